package model

import (
	"time"

	"gorm.io/gorm"
)

// 価格はすべてpaise（1/100ルピー）の整数
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text;not null" json:"description"`
	CategoryID  int64          `gorm:"not null;index" json:"categoryId"`
	BasePrice   int64          `gorm:"not null" json:"basePrice"`
	Stock       int64          `gorm:"not null;default:0" json:"stock"`
	IsActive    bool           `gorm:"not null" json:"isActive"`
	IsFeatured  bool           `gorm:"not null;default:false" json:"isFeatured"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// 商品画像。URLのみ保持
type ProductImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"productId"`
	URL       string    `gorm:"type:varchar(1024);not null" json:"url"`
	AltText   string    `gorm:"type:varchar(255)" json:"altText"`
	IsPrimary bool      `gorm:"not null;default:false" json:"isPrimary"`
	SortOrder int       `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

// サイズ違い（250g / 500g / 1kg）。価格と在庫は商品の値を上書きする
type ProductVariant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"productId"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Price     int64     `gorm:"not null" json:"price"`
	Stock     int64     `gorm:"not null;default:0" json:"stock"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// variantが選ばれていればvariantの価格
func UnitPrice(p Product, v *ProductVariant) int64 {
	if v != nil {
		return v.Price
	}
	return p.BasePrice
}

// variantが選ばれていればvariantの在庫
func AvailableStock(p Product, v *ProductVariant) int64 {
	if v != nil {
		return v.Stock
	}
	return p.Stock
}
