package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // development/production
	FEURL string // フロントURL（CORSで使う）

	DB DBConfig

	JWTSecret      string        // JWT署名シークレット
	AccessTokenTTL time.Duration // アクセストークンの有効期限

	Session SessionConfig
	Redis   RedisConfig

	RequestTimeout time.Duration // 1リクエストの上限時間

	StripeSecretKey string // 空なら決済は503

	Kafka KafkaConfig

	JaegerEndpoint string // 空ならトレースは出さない
}

type DBConfig struct {
	Driver   string // postgres / sqlite / mysql
	URL      string // DATABASE_URL（あれば最優先）
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Addrが空ならメモリのセッションストア
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Brokersが空なら注文イベントは送らない
type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Loadは.env（あれば）と環境変数から読む
func Load() (Config, error) {
	_ = godotenv.Load()

	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := atoiDefault("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	accessTTL, err := durationDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}
	sessionTTL, err := durationDefault("SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	reqTimeout, err := durationDefault("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "development"),
		FEURL: os.Getenv("FE_URL"),

		DB: DBConfig{
			Driver:   getenv("DB_DRIVER", "postgres"),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getenv("POSTGRES_HOST", "localhost"),
			Port:     pgPort,
			User:     getenv("POSTGRES_USER", "postgres"),
			Password: getenv("POSTGRES_PASSWORD", "postgres"),
			Name:     getenv("POSTGRES_DB", "acharam"),
			SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		},

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: accessTTL,

		Session: SessionConfig{
			CookieName: getenv("SESSION_COOKIE_NAME", "acharam_session"),
			TTL:        sessionTTL,
			Secure:     envBool("COOKIE_SECURE", false),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},

		RequestTimeout: reqTimeout,

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),

		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			OrderTopic: getenv("KAFKA_ORDER_TOPIC", "acharam.orders"),
		},

		JaegerEndpoint: os.Getenv("JAEGER_ENDPOINT"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.DB.Driver {
	case "postgres", "sqlite", "mysql":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER %q is not supported", cfg.DB.Driver)
	}
	if cfg.DB.Driver != "postgres" && cfg.DB.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required for DB_DRIVER=%s", cfg.DB.Driver)
	}
	if cfg.IsProduction() && !cfg.Session.Secure {
		return Config{}, fmt.Errorf("COOKIE_SECURE must be true in production")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

// "30s" / "15m" 形式
func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
