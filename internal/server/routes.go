package server

import (
	"net/http"

	"acharam/internal/config"
	"acharam/internal/handler"
	infraRepo "acharam/internal/infra/repository"
	"acharam/internal/middleware"
	"acharam/internal/usecase"
	auth "acharam/internal/usecase/auth_usecase"
	"acharam/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type routeRegistrar interface {
	RegisterRoutes(api *echo.Group, g handler.Guards)
}

// RegisterRoutes はRepository→Usecase→Handlerを組み立てて /api 以下に登録する
func RegisterRoutes(e *echo.Echo, cfg config.Config, d Deps) error {
	clock := d.Clock
	if clock == nil {
		clock = usecase.SystemClock{}
	}

	//Repository（GORM実装）
	repos := infraRepo.NewRepos(d.DB)
	txm := infraRepo.NewTxManagerGorm(d.DB)

	//auth
	issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}
	authValidator := validator.NewAuthValidator()
	registerUC := auth.NewRegisterUserUsecase(repos.Users(), auth.NewBcryptPasswordHasher(d.BcryptCost), authValidator)
	loginUC := auth.NewLoginUsecase(repos.Users(), auth.NewBcryptPasswordVerifier(), issuer, authValidator, clock)
	meUC := auth.NewMeUsecase(repos.Users())

	//Usecase
	cartUC := usecase.NewCartUsecase(txm, repos, clock)
	orderUC := usecase.NewOrderUsecase(txm, repos, d.Publisher, clock)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, d.Publisher, clock)
	productUC := usecase.NewProductUsecase(txm, repos)
	categoryUC := usecase.NewCategoryUsecase(txm, repos.Categories())
	reviewUC := usecase.NewReviewUsecase(repos.Reviews(), repos.Products())
	addressUC := usecase.NewAddressUsecase(txm, repos.Addresses())
	couponUC := usecase.NewCouponUsecase(repos.Coupons(), clock)
	paymentUC := usecase.NewPaymentUsecase(d.Payment)
	auditUC := usecase.NewAuditLogUsecase(repos.AuditLogs())

	guards := handler.Guards{
		Auth:  middleware.RequireAuth(),
		Admin: []echo.MiddlewareFunc{middleware.RequireAuth(), middleware.AdminRoleGuard(repos.Users())},
	}

	e.GET("/healthz", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	for _, h := range []routeRegistrar{
		handler.NewAuthHandler(registerUC, loginUC, meUC, cartUC),
		handler.NewCategoryHandler(categoryUC),
		handler.NewProductHandler(productUC),
		handler.NewAdminProductHandler(productUC),
		handler.NewReviewHandler(reviewUC),
		handler.NewCartHandler(cartUC),
		handler.NewOrderHandler(orderUC),
		handler.NewAdminOrderHandler(adminOrderUC),
		handler.NewAddressHandler(addressUC),
		handler.NewCouponHandler(couponUC),
		handler.NewPaymentHandler(paymentUC),
		handler.NewAuditLogHandler(auditUC),
	} {
		h.RegisterRoutes(api, guards)
	}
	return nil
}
