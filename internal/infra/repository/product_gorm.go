package repository

import (
	"context"
	"strings"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 削除済み（deleted_at）は常に除外される
func (r *ProductGormRepository) List(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	var products []model.Product

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if f.CategoryID != nil {
		tx = tx.Where("category_id = ?", *f.CategoryID)
	}
	if f.IsActive != nil {
		tx = tx.Where("is_active = ?", *f.IsActive)
	}
	if f.IsFeatured != nil {
		tx = tx.Where("is_featured = ?", *f.IsFeatured)
	}

	// q nameを対象（大文字小文字を区別しない）
	if q := strings.TrimSpace(f.Q); q != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	if err := tx.Order("created_at desc").Order("id desc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// 商品の更新
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"slug":        p.Slug,
		"description": p.Description,
		"category_id": p.CategoryID,
		"base_price":  p.BasePrice,
		"stock":       p.Stock,
		"is_active":   p.IsActive,
		"is_featured": p.IsFeatured,
	})
	return affected(res)
}

// 商品削除（論理削除）。注文明細はスナップショットなので影響しない
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Product{}, id))
}

type ProductImageGormRepository struct {
	db *gorm.DB
}

func NewProductImageGormRepository(db *gorm.DB) *ProductImageGormRepository {
	return &ProductImageGormRepository{db: db}
}

func (r *ProductImageGormRepository) ListByProductIDs(ctx context.Context, productIDs []int64) ([]model.ProductImage, error) {
	if len(productIDs) == 0 {
		return []model.ProductImage{}, nil
	}
	var list []model.ProductImage
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("sort_order asc").Order("id asc").
		Find(&list).Error; err != nil {
		return []model.ProductImage{}, err
	}
	return list, nil
}

func (r *ProductImageGormRepository) FindByID(ctx context.Context, id int64) (model.ProductImage, error) {
	var img model.ProductImage
	if err := r.db.WithContext(ctx).First(&img, id).Error; err != nil {
		return model.ProductImage{}, translate(err)
	}
	return img, nil
}

func (r *ProductImageGormRepository) Create(ctx context.Context, img model.ProductImage) (model.ProductImage, error) {
	if err := r.db.WithContext(ctx).Create(&img).Error; err != nil {
		return model.ProductImage{}, translate(err)
	}
	return img, nil
}

func (r *ProductImageGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.ProductImage{}, id))
}

type ProductVariantGormRepository struct {
	db *gorm.DB
}

func NewProductVariantGormRepository(db *gorm.DB) *ProductVariantGormRepository {
	return &ProductVariantGormRepository{db: db}
}

func (r *ProductVariantGormRepository) ListByProductIDs(ctx context.Context, productIDs []int64) ([]model.ProductVariant, error) {
	if len(productIDs) == 0 {
		return []model.ProductVariant{}, nil
	}
	var list []model.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("price asc").Order("id asc").
		Find(&list).Error; err != nil {
		return []model.ProductVariant{}, err
	}
	return list, nil
}

func (r *ProductVariantGormRepository) FindByID(ctx context.Context, id int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return model.ProductVariant{}, translate(err)
	}
	return v, nil
}

func (r *ProductVariantGormRepository) Create(ctx context.Context, v model.ProductVariant) (model.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.ProductVariant{}, translate(err)
	}
	return v, nil
}

func (r *ProductVariantGormRepository) Update(ctx context.Context, v model.ProductVariant) error {
	res := r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ? AND product_id = ?", v.ID, v.ProductID).
		Updates(map[string]interface{}{
			"name":      v.Name,
			"price":     v.Price,
			"stock":     v.Stock,
			"is_active": v.IsActive,
		})
	return affected(res)
}
