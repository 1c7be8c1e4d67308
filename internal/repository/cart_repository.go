package repository

import (
	"context"

	"acharam/internal/domain/model"
)

type CartRepository interface {
	FindByOwner(ctx context.Context, owner model.CartOwner) (model.Cart, error)
	// 同じownerには常に同じ行を返す
	GetOrCreate(ctx context.Context, owner model.CartOwner) (model.Cart, error)
	Delete(ctx context.Context, cartID int64) error
	// 明細を全削除
	Clear(ctx context.Context, cartID int64) error
}
