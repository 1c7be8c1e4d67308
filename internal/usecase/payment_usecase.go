package usecase

import (
	"context"
	"net/http"
	"time"

	"acharam/internal/util"
)

const paymentCurrency = "inr"

// 決済代行（Stripeなど）。amountはpaise
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (clientSecret string, err error)
}

type PaymentUsecase struct {
	// 未設定ならnil
	gateway PaymentGateway
}

func NewPaymentUsecase(gateway PaymentGateway) *PaymentUsecase {
	return &PaymentUsecase{gateway: gateway}
}

type PaymentIntentOutput struct {
	ClientSecret string `json:"clientSecret"`
}

func (u *PaymentUsecase) CreatePaymentIntent(ctx context.Context, amount int64) (PaymentIntentOutput, error) {
	if u.gateway == nil {
		util.PaymentIntentsTotal.WithLabelValues("unconfigured").Inc()
		return PaymentIntentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "Payment gateway not configured")
	}
	if amount <= 0 {
		util.PaymentIntentsTotal.WithLabelValues("invalid").Inc()
		return PaymentIntentOutput{}, NewHTTPError(http.StatusBadRequest, "Invalid amount")
	}

	ctx, span := util.StartSpan(ctx, "PaymentGateway.CreatePaymentIntent")
	defer span.End()

	start := time.Now()
	secret, err := u.gateway.CreatePaymentIntent(ctx, amount, paymentCurrency)
	util.PaymentGatewayLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		util.PaymentIntentsTotal.WithLabelValues("error").Inc()
		return PaymentIntentOutput{}, WrapHTTPError(http.StatusBadGateway, "Failed to create payment intent", err)
	}

	util.PaymentIntentsTotal.WithLabelValues("created").Inc()
	return PaymentIntentOutput{ClientSecret: secret}, nil
}
