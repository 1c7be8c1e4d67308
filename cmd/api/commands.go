package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"acharam/internal/config"
	"acharam/internal/infra/broker"
	"acharam/internal/infra/db"
	"acharam/internal/infra/payment"
	infraRepo "acharam/internal/infra/repository"
	"acharam/internal/infra/session"
	"acharam/internal/seed"
	"acharam/internal/server"
	"acharam/internal/usecase"
	auth "acharam/internal/usecase/auth_usecase"
	"acharam/internal/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, gormDB, err := bootstrap()
		if err != nil {
			return err
		}
		defer util.SyncLogger()
		log := util.GetLogger()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.JaegerEndpoint != "" {
			tp, err := util.InitTracer(cfg.JaegerEndpoint)
			if err != nil {
				return fmt.Errorf("init tracer: %w", err)
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(sctx)
			}()
		}

		// 開発時はテーブルを作ってから起動
		if !cfg.IsProduction() {
			if err := db.Migrate(gormDB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		var store session.Store
		if cfg.Redis.Addr != "" {
			client, err := session.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer client.Close()
			store = session.NewRedisStore(client)
		} else {
			log.Warn("REDIS_ADDR not set, using in-memory sessions")
			store = session.NewMemoryStore()
		}

		// 未設定のときはinterfaceごとnilにする（/create-payment-intent は503）
		var gateway usecase.PaymentGateway
		if cfg.StripeSecretKey != "" {
			g, err := payment.NewStripeGateway(cfg.StripeSecretKey)
			if err != nil {
				return err
			}
			gateway = g
		}

		var publisher interface {
			usecase.OrderEventPublisher
			Close() error
		} = broker.NopProducer{}
		if len(cfg.Kafka.Brokers) > 0 {
			publisher = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
		}
		defer publisher.Close()

		e, err := server.New(cfg, server.Deps{
			DB:        gormDB,
			Sessions:  store,
			Payment:   gateway,
			Publisher: publisher,
			Clock:     usecase.SystemClock{},
		})
		if err != nil {
			return err
		}

		addr := ":" + cfg.Port
		log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.GoEnv))
		if err := server.Start(ctx, e, addr); err != nil {
			return err
		}
		log.Info("server stopped")
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gormDB, err := bootstrap()
		if err != nil {
			return err
		}
		defer util.SyncLogger()

		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		util.GetLogger().Info("migration completed")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample users, products and a coupon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gormDB, err := bootstrap()
		if err != nil {
			return err
		}
		defer util.SyncLogger()
		log := util.GetLogger()

		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		hasher := auth.NewBcryptPasswordHasher(10)
		if err := seed.Run(cmd.Context(), infraRepo.NewTxManagerGorm(gormDB), hasher, log); err != nil {
			return err
		}
		log.Info("seed completed",
			zap.String("admin", "admin@acharam.com / admin123"),
			zap.String("customer", "customer@example.com / customer123"),
		)
		return nil
	},
}

// 設定・ロガー・DBの順に初期化する
func bootstrap() (config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if err := util.InitLogger(cfg.GoEnv); err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("connect db: %w", err)
	}
	return cfg, gormDB, nil
}
