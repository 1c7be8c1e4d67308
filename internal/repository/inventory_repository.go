package repository

import "context"

// variantIDがあればvariantの在庫、なければ商品の在庫を動かす
type InventoryRepository interface {
	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, productID int64, variantID *int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, variantID *int64, qty int64) error
}
