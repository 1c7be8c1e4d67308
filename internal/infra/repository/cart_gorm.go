package repository

import (
	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func ownerScope(owner model.CartOwner) (func(*gorm.DB) *gorm.DB, error) {
	if id, ok := owner.UserID(); ok {
		return func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", id) }, nil
	}
	if token, ok := owner.GuestToken(); ok {
		return func(db *gorm.DB) *gorm.DB { return db.Where("session_token = ?", token) }, nil
	}
	return nil, model.ErrInvalidCartOwner
}

// 持ち主のカートを取得
func (r *CartGormRepository) FindByOwner(ctx context.Context, owner model.CartOwner) (model.Cart, error) {
	scope, err := ownerScope(owner)
	if err != nil {
		return model.Cart{}, err
	}

	var cart model.Cart
	if err := r.db.WithContext(ctx).Scopes(scope).First(&cart).Error; err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

// 持ち主のカートを取得し、無ければ作成。
// user_id / session_tokenの一意制約で重複は作られない
func (r *CartGormRepository) GetOrCreate(ctx context.Context, owner model.CartOwner) (model.Cart, error) {
	cart, err := r.FindByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, err
	}

	// 無ければ作る
	newCart, err := model.NewCart(owner)
	if err != nil {
		return model.Cart{}, err
	}

	//同時に作られていたら何もしない（Tx内でも失敗させない）
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&newCart)
	if res.Error != nil {
		return model.Cart{}, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.FindByOwner(ctx, owner)
	}

	return newCart, nil
}

func (r *CartGormRepository) Delete(ctx context.Context, cartID int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Cart{}, cartID))
}

// 指定カートの明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}

type CartItemGormRepository struct {
	db *gorm.DB
}

func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// カート明細を一覧取得
func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// 明細を取得
func (r *CartItemGormRepository) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	var item model.CartItem

	if err := r.db.WithContext(ctx).Where("id = ?", cartItemID).First(&item).Error; err != nil {
		return model.CartItem{}, translate(err)
	}
	return item, nil
}

// 同一商品・同一variantの明細
func (r *CartItemGormRepository) FindLine(ctx context.Context, cartID int64, productID int64, variantID *int64) (model.CartItem, error) {
	q := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID)
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}

	var item model.CartItem
	if err := q.First(&item).Error; err != nil {
		return model.CartItem{}, translate(err)
	}
	return item, nil
}

func (r *CartItemGormRepository) Create(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	if item.Quantity <= 0 {
		return model.CartItem{}, errors.New("invalid quantity")
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.CartItem{}, translate(err)
	}
	return item, nil
}

// 明細の数量を更新
func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("quantity", qty)
	return affected(res)
}

// 明細を削除
func (r *CartItemGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID))
}
