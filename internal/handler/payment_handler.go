package handler

import (
	"math"
	"net/http"

	"acharam/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// amountはpaise。小数は受け付けない
type paymentIntentRequest struct {
	Amount *float64 `json:"amount"`
}

func (h *PaymentHandler) RegisterRoutes(api *echo.Group, _ Guards) {
	api.POST("/create-payment-intent", h.createPaymentIntent)
}

func (h *PaymentHandler) createPaymentIntent(c echo.Context) error {
	var req paymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid amount")
	}

	var amount int64
	if req.Amount != nil && *req.Amount == math.Trunc(*req.Amount) && *req.Amount <= math.MaxInt64/2 {
		amount = int64(*req.Amount)
	}

	out, err := h.uc.CreatePaymentIntent(c.Request().Context(), amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
