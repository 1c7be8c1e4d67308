package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// リクエストのcontextに上限時間をつける。DBと決済呼び出しはこのcontextで止まる
func RequestTimeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if d <= 0 {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
