package model

import "time"

// 注文時点の商品名・価格のスナップショット
type OrderItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64     `gorm:"not null;index" json:"orderId"`
	ProductID   int64     `gorm:"not null;index" json:"productId"`
	VariantID   *int64    `json:"variantId"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"productName"`
	VariantName string    `gorm:"type:varchar(100)" json:"variantName"`
	UnitPrice   int64     `gorm:"not null" json:"price"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (i OrderItem) LineTotal() int64 {
	return i.UnitPrice * i.Quantity
}
