package repository

import (
	"context"

	"acharam/internal/domain/model"
)

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	// usage_count < usage_limit のときだけ+1。上限に達していればfalse
	IncrementUsage(ctx context.Context, couponID int64) (bool, error)
}
