package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"acharam/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // string（Bearerのときだけ）
)

type errorResponse struct {
	Message string `json:"message"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Message: msg}
}

// Identity はリクエストのユーザーを決める。
// Bearerがあればそれを優先し、なければセッションのuserId。どちらも無ければゲスト
func Identity(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if authz != "" {
				userID, role, err := parseBearer(authz, cfg.JWTSecret)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, errorJSON("Invalid token"))
				}
				c.Set(CtxUserIDKey, userID)
				c.Set(CtxUserRoleKey, role)
				return next(c)
			}

			if sess := GetSession(c); sess != nil && sess.UserID() > 0 {
				c.Set(CtxUserIDKey, sess.UserID())
			}
			return next(c)
		}
	}
}

// ログイン必須
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, ok := c.Get(CtxUserIDKey).(int64); !ok || id <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("Authentication required"))
			}
			return next(c)
		}
	}
}

// Bearer形式か確認してtokenを検証し、sub / role を返す
func parseBearer(authz string, secret string) (int64, string, error) {
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 0, "", errors.New("not bearer")
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return 0, "", errors.New("empty token")
	}

	//JWTをパースして検証する（expもここで見る）
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || token == nil || !token.Valid {
		return 0, "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid claims")
	}

	userID, err := parseUserID(claims["sub"])
	if err != nil || userID <= 0 {
		return 0, "", errors.New("invalid sub")
	}
	role, _ := claims["role"].(string)
	return userID, role, nil
}

// user_idをint64に変換する
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}
