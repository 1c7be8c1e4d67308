package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
	"acharam/internal/util"
)

type CouponUsecase struct {
	coupons repo.CouponRepository
	clock   Clock
}

func NewCouponUsecase(coupons repo.CouponRepository, clock Clock) *CouponUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CouponUsecase{coupons: coupons, clock: clock}
}

type CouponSummary struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type CouponValidation struct {
	Valid    bool          `json:"valid"`
	Discount int64         `json:"discount"`
	Coupon   CouponSummary `json:"coupon"`
}

// Validate は使用回数を消費せずに割引額を返す。
// 使えない場合は *model.CouponRejectedError
func (u *CouponUsecase) Validate(ctx context.Context, code string, orderAmount int64) (CouponValidation, error) {
	ctx, span := util.StartSpan(ctx, "CouponUsecase.Validate")
	defer span.End()

	code = model.NormalizeCouponCode(code)
	if code == "" {
		return CouponValidation{}, NewHTTPError(http.StatusBadRequest, "code is required")
	}
	if orderAmount < 0 {
		return CouponValidation{}, NewHTTPError(http.StatusBadRequest, "invalid orderAmount")
	}

	c, discount, err := evaluateCoupon(ctx, u.coupons, code, orderAmount, u.clock.Now())
	if err != nil {
		return CouponValidation{}, err
	}
	return CouponValidation{
		Valid:    true,
		Discount: discount,
		Coupon:   CouponSummary{Code: c.Code, Description: c.Description},
	}, nil
}

func evaluateCoupon(ctx context.Context, coupons repo.CouponRepository, code string, amount int64, now time.Time) (model.Coupon, int64, error) {
	c, err := coupons.FindByCode(ctx, model.NormalizeCouponCode(code))
	if errors.Is(err, repo.ErrNotFound) {
		util.CouponEvaluationsTotal.WithLabelValues(string(model.CouponInvalidCode)).Inc()
		return model.Coupon{}, 0, model.RejectCoupon(model.CouponInvalidCode)
	}
	if err != nil {
		return model.Coupon{}, 0, dbError(err)
	}

	discount, err := c.Evaluate(amount, now)
	if err != nil {
		var rej *model.CouponRejectedError
		if errors.As(err, &rej) {
			util.CouponEvaluationsTotal.WithLabelValues(string(rej.Reason)).Inc()
		}
		return model.Coupon{}, 0, err
	}
	util.CouponEvaluationsTotal.WithLabelValues("accepted").Inc()
	return c, discount, nil
}

// 注文確定時に評価して使用回数を1つ消費する。Tx内で呼ぶ
func redeemCoupon(ctx context.Context, r repo.TxRepos, code string, amount int64, now time.Time) (model.Coupon, int64, error) {
	c, discount, err := evaluateCoupon(ctx, r.Coupons(), code, amount, now)
	if err != nil {
		return model.Coupon{}, 0, err
	}
	ok, err := r.Coupons().IncrementUsage(ctx, c.ID)
	if err != nil {
		return model.Coupon{}, 0, dbError(err)
	}
	// 評価と消費の間に上限に達した
	if !ok {
		return model.Coupon{}, 0, model.RejectCoupon(model.CouponLimitReached)
	}
	return c, discount, nil
}
