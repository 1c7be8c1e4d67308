package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"acharam/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponUsecase_Validate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.welcomeCoupon(t, 100)
	uc := NewCouponUsecase(f.repos.Coupons(), f.clock)

	out, err := uc.Validate(ctx, "welcome10", 35000)
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Equal(t, int64(3500), out.Discount)
	assert.Equal(t, "WELCOME10", out.Coupon.Code)

	// 上限で頭打ち
	out, err = uc.Validate(ctx, "WELCOME10", 500000)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), out.Discount)

	// 検証では使用回数を消費しない
	c, err := f.repos.Coupons().FindByCode(ctx, "WELCOME10")
	require.NoError(t, err)
	assert.Zero(t, c.UsageCount)
}

func TestCouponUsecase_Validate_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.welcomeCoupon(t, 100)

	expired := testNow.Add(-1)
	_, err := f.repos.Coupons().Create(ctx, model.Coupon{Code: "OLD", IsActive: true, ExpiresAt: &expired})
	require.NoError(t, err)
	_, err = f.repos.Coupons().Create(ctx, model.Coupon{Code: "OFF", IsActive: false})
	require.NoError(t, err)

	uc := NewCouponUsecase(f.repos.Coupons(), f.clock)

	tests := []struct {
		code   string
		amount int64
		want   model.CouponRejectReason
	}{
		{"NOPE", 35000, model.CouponInvalidCode},
		{"OLD", 35000, model.CouponExpired},
		{"OFF", 35000, model.CouponInvalidCode},
		{"WELCOME10", 29999, model.CouponMinimumNotMet},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := uc.Validate(ctx, tt.code, tt.amount)
			var rej *model.CouponRejectedError
			require.True(t, errors.As(err, &rej), "got %v", err)
			assert.Equal(t, tt.want, rej.Reason)
		})
	}

	_, err = uc.Validate(ctx, "  ", 100)
	requireHTTPError(t, err, http.StatusBadRequest, "code is required")
	_, err = uc.Validate(ctx, "WELCOME10", -1)
	requireHTTPError(t, err, http.StatusBadRequest, "invalid orderAmount")
}
