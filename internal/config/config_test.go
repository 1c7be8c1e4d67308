package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// .envが読まれても上書きされるように全部セットする
func setBaseEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GO_ENV", "development")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_ORDER_TOPIC", "")
	t.Setenv("PORT", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "acharam.orders", cfg.Kafka.OrderTopic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:dev.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]map[string]string{
		"missing jwt secret":      {"JWT_SECRET": ""},
		"unsupported driver":      {"DB_DRIVER": "oracle"},
		"sqlite without url":      {"DB_DRIVER": "sqlite"},
		"bad duration":            {"SESSION_TTL": "forever"},
		"negative duration":       {"REQUEST_TIMEOUT": "-1s"},
		"bad port":                {"POSTGRES_PORT": "abc"},
		"insecure cookie in prod": {"GO_ENV": "production", "COOKIE_SECURE": "false"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProductionWithSecureCookie(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GO_ENV", "production")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Session.Secure)
}
