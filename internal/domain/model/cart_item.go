package model

import "time"

// カートの明細。価格は持たず、表示と注文時に商品から引く
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;index" json:"cartId"`
	ProductID int64     `gorm:"not null;index" json:"productId"`
	VariantID *int64    `gorm:"index" json:"variantId"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// 同じ商品・同じvariantなら同じ明細
func (i CartItem) SameLine(productID int64, variantID *int64) bool {
	if i.ProductID != productID {
		return false
	}
	if i.VariantID == nil || variantID == nil {
		return i.VariantID == nil && variantID == nil
	}
	return *i.VariantID == *variantID
}
