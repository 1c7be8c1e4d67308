package middleware

import (
	"errors"
	"net/http"

	"acharam/internal/repository"
	"acharam/internal/util"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ユーザーをDBから読み直してADMINかどうかを確認します。
// トークンのroleは見ない
func AdminRoleGuard(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("Authentication required"))
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, errorJSON("Authentication required"))
			}
			if err != nil {
				util.GetLogger().Error("admin guard: load user", zap.Int64("user_id", userID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, errorJSON("Internal server error"))
			}

			//CUSTOMERは拒否、ADMINだけ許可
			if !user.IsAdmin() {
				return c.JSON(http.StatusForbidden, errorJSON("Admin access required"))
			}
			c.Set(CtxUserRoleKey, string(user.Role))
			return next(c)
		}
	}
}
