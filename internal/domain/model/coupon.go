package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// クーポン。任意項目はnilなら未設定
type Coupon struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code            string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Description     string     `gorm:"type:varchar(255)" json:"description"`
	DiscountPercent *int64     `json:"discountPercent"`
	MaxDiscount     *int64     `json:"maxDiscount"`
	DiscountAmount  *int64     `json:"discountAmount"`
	MinOrderAmount  *int64     `json:"minOrderAmount"`
	UsageLimit      *int64     `json:"usageLimit"`
	UsageCount      int64      `gorm:"not null;default:0" json:"usageCount"`
	IsActive        bool       `gorm:"not null" json:"isActive"`
	ExpiresAt       *time.Time `json:"expiresAt"`
	CreatedAt       time.Time  `gorm:"not null;autoCreateTime" json:"createdAt"`
}

// コードは大文字で保存・検索する
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type CouponRejectReason string

const (
	CouponInvalidCode   CouponRejectReason = "invalid_code"
	CouponExpired       CouponRejectReason = "expired"
	CouponLimitReached  CouponRejectReason = "limit_reached"
	CouponMinimumNotMet CouponRejectReason = "minimum_not_met"
)

// 画面側で理由ごとに出し分けるので理由を型で返す
type CouponRejectedError struct {
	Reason         CouponRejectReason
	MinOrderAmount int64
}

func (e *CouponRejectedError) Error() string {
	switch e.Reason {
	case CouponInvalidCode:
		return "Invalid coupon code"
	case CouponExpired:
		return "Coupon has expired"
	case CouponLimitReached:
		return "Coupon usage limit reached"
	case CouponMinimumNotMet:
		return fmt.Sprintf("Minimum order amount of ₹%s required", formatRupees(e.MinOrderAmount))
	default:
		return "Invalid coupon"
	}
}

func RejectCoupon(reason CouponRejectReason) *CouponRejectedError {
	return &CouponRejectedError{Reason: reason}
}

// 使用回数を消費せずに割引額だけ計算する。
// 最初に失敗したチェックで返す。無効化されたコードは存在しないコードと同じ扱い
func (c Coupon) Evaluate(orderAmount int64, now time.Time) (int64, error) {
	if !c.IsActive {
		return 0, RejectCoupon(CouponInvalidCode)
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return 0, RejectCoupon(CouponExpired)
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return 0, RejectCoupon(CouponLimitReached)
	}
	if c.MinOrderAmount != nil && orderAmount < *c.MinOrderAmount {
		return 0, &CouponRejectedError{Reason: CouponMinimumNotMet, MinOrderAmount: *c.MinOrderAmount}
	}
	return c.Discount(orderAmount), nil
}

// 割合があれば四捨五入して上限で頭打ち、なければ固定額
func (c Coupon) Discount(orderAmount int64) int64 {
	if c.DiscountPercent != nil {
		d := roundPercent(orderAmount, *c.DiscountPercent)
		if c.MaxDiscount != nil && d > *c.MaxDiscount {
			d = *c.MaxDiscount
		}
		return d
	}
	if c.DiscountAmount != nil {
		return *c.DiscountAmount
	}
	return 0
}

func roundPercent(amount, percent int64) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	return (amount*percent + 50) / 100
}

// 30000 -> "300", 29950 -> "299.5"
func formatRupees(paise int64) string {
	return strconv.FormatFloat(float64(paise)/100, 'f', -1, 64)
}
