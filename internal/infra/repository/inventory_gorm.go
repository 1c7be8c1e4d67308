package repository

import (
	"context"

	"acharam/internal/domain/model"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) stockQuery(ctx context.Context, productID int64, variantID *int64) *gorm.DB {
	if variantID != nil {
		return r.db.WithContext(ctx).
			Model(&model.ProductVariant{}).
			Where("id = ? AND product_id = ?", *variantID, productID)
	}
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID)
}

// 在庫が足りるときだけ減らす（条件付きUPDATE1本）
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, variantID *int64, qty int64) (bool, error) {
	res := r.stockQuery(ctx, productID, variantID).
		Where("stock >= ?", qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// 在庫戻し（キャンセル）
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID int64, variantID *int64, qty int64) error {
	res := r.stockQuery(ctx, productID, variantID).
		Update("stock", gorm.Expr("stock + ?", qty))
	return affected(res)
}
