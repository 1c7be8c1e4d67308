package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"acharam/internal/config"
	"acharam/internal/infra/session"
	"acharam/internal/middleware"
	"acharam/internal/usecase"
	"acharam/internal/util"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 外部リソース。Paymentは未設定ならnil
type Deps struct {
	DB        *gorm.DB
	Sessions  session.Store
	Payment   usecase.PaymentGateway
	Publisher usecase.OrderEventPublisher
	Clock     usecase.Clock
	// 0ならbcryptのデフォルト
	BcryptCost int
}

// New はミドルウェアとルートを組み立てたechoを返す
func New(cfg config.Config, d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     allowOrigins(cfg.FEURL),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key"},
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.SessionMiddleware(d.Sessions, cfg.Session))
	e.Use(middleware.Identity(cfg))

	if err := RegisterRoutes(e, cfg, d); err != nil {
		return nil, err
	}
	return e, nil
}

func allowOrigins(feURL string) []string {
	if strings.TrimSpace(feURL) == "" {
		return []string{"http://localhost:5173"}
	}
	var out []string
	for _, o := range strings.Split(feURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Start はctxが終わるまでサーバーを動かし、終わったら処理中のリクエストを待って止める
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		util.GetLogger().Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	util.GetLogger().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
