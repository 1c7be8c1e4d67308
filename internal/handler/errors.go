package handler

import (
	"errors"
	"net/http"
	"strconv"

	"acharam/internal/domain/model"
	"acharam/internal/middleware"
	"acharam/internal/usecase"
	auth "acharam/internal/usecase/auth_usecase"
	"acharam/internal/util"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// クーポンが使えないとき。画面は reason で出し分ける
type CouponErrorResponse struct {
	Message        string `json:"message"`
	Reason         string `json:"reason"`
	MinOrderAmount *int64 `json:"minOrderAmount,omitempty"`
}

// ルートごとのゲート
type Guards struct {
	// ログイン必須
	Auth echo.MiddlewareFunc
	// ログイン必須＋ADMIN
	Admin []echo.MiddlewareFunc
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var rej *model.CouponRejectedError
	if errors.As(err, &rej) {
		status := http.StatusBadRequest
		if rej.Reason == model.CouponInvalidCode {
			status = http.StatusNotFound
		}
		res := CouponErrorResponse{Message: rej.Error(), Reason: string(rej.Reason)}
		if rej.MinOrderAmount > 0 {
			m := rej.MinOrderAmount
			res.MinOrderAmount = &m
		}
		return c.JSON(status, res)
	}

	var inErr *auth.InputError
	if errors.As(err, &inErr) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: inErr.Message})
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			logError(c, he.Status, err)
		}
		//500の中身は返さない
		if he.Status == http.StatusInternalServerError {
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
		}
		return c.JSON(he.Status, ErrorResponse{Message: he.Message})
	}

	//500
	logError(c, http.StatusInternalServerError, err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
}

func logError(c echo.Context, status int, err error) {
	util.GetLogger().Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Error(err),
	)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Message: msg})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// :id などのパスパラメータ
func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// クエリの整数。空ならdef
func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// クエリのint64。空ならnil
func queryInt64Ptr(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// クエリのbool。空ならnil
func queryBoolPtr(c echo.Context, name string) (*bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
