package handler

import (
	"net/http"

	"acharam/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CouponHandler struct {
	uc *usecase.CouponUsecase
}

func NewCouponHandler(uc *usecase.CouponUsecase) *CouponHandler {
	return &CouponHandler{uc: uc}
}

type validateCouponRequest struct {
	Code        string `json:"code"`
	OrderAmount int64  `json:"orderAmount"`
}

func (h *CouponHandler) RegisterRoutes(api *echo.Group, _ Guards) {
	api.POST("/coupons/validate", h.validate)
}

// POST /api/coupons/validate 使用回数は消費しない
func (h *CouponHandler) validate(c echo.Context) error {
	var req validateCouponRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Validate(c.Request().Context(), req.Code, req.OrderAmount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
