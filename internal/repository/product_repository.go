package repository

import (
	"acharam/internal/domain/model"
	"context"
)

// 一覧の絞り込み。nilは条件なし
type ProductFilter struct {
	CategoryID *int64
	IsActive   *bool
	IsFeatured *bool
	// 商品名の部分一致（管理画面の検索）
	Q string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindBySlug(ctx context.Context, slug string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}

type ProductImageRepository interface {
	ListByProductIDs(ctx context.Context, productIDs []int64) ([]model.ProductImage, error)
	FindByID(ctx context.Context, id int64) (model.ProductImage, error)
	Create(ctx context.Context, img model.ProductImage) (model.ProductImage, error)
	Delete(ctx context.Context, id int64) error
}

type ProductVariantRepository interface {
	ListByProductIDs(ctx context.Context, productIDs []int64) ([]model.ProductVariant, error)
	FindByID(ctx context.Context, id int64) (model.ProductVariant, error)
	Create(ctx context.Context, v model.ProductVariant) (model.ProductVariant, error)
	Update(ctx context.Context, v model.ProductVariant) error
}
