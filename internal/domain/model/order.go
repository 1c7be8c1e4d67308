package model

import (
	"errors"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var (
	ErrInvalidOrderStatus   = errors.New("invalid status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrOrderStatusUnchanged = errors.New("status unchanged")
)

// 配送の進み具合。CANCELLEDは順序の外
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, nil
	}
	return "", ErrInvalidOrderStatus
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// 遷移表
// - 前に進むだけ（飛ばしは可）
// - CANCELLEDはPENDING/PROCESSINGからのみ
// - DELIVERED/CANCELLEDからは動かない
func (s OrderStatus) CanTransitionTo(next OrderStatus) error {
	if s == next {
		return ErrOrderStatusUnchanged
	}
	if s.IsTerminal() {
		return ErrInvalidTransition
	}
	if next == OrderStatusCancelled {
		if s == OrderStatusPending || s == OrderStatusProcessing {
			return nil
		}
		return ErrInvalidTransition
	}
	from, ok := orderStatusRank[s]
	if !ok {
		return ErrInvalidTransition
	}
	to, ok := orderStatusRank[next]
	if !ok || to <= from {
		return ErrInvalidTransition
	}
	return nil
}

// 作成後は明細も金額も変わらない。変わるのはstatusだけ
type Order struct {
	ID              int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64       `gorm:"not null;index" json:"userId"`
	AddressID       int64       `gorm:"not null" json:"addressId"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Subtotal        int64       `gorm:"not null" json:"subtotal"`
	ShippingAmount  int64       `gorm:"not null;default:0" json:"shippingAmount"`
	DiscountAmount  int64       `gorm:"not null;default:0" json:"discountAmount"`
	TotalAmount     int64       `gorm:"not null" json:"totalAmount"`
	CouponCode      *string     `gorm:"type:varchar(64)" json:"couponCode"`
	PaymentIntentID *string     `gorm:"type:varchar(255)" json:"paymentIntentId"`
	IdempotencyKey  *string     `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	CreatedAt       time.Time   `gorm:"not null;autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time   `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
