package repository

import (
	"context"

	repo "acharam/internal/repository"

	"gorm.io/gorm"
)

// 同じ*gorm.DB（またはtx）に束ねたrepository一式
type Repos struct {
	users           *UserGormRepository
	categories      *CategoryGormRepository
	products        *ProductGormRepository
	productImages   *ProductImageGormRepository
	productVariants *ProductVariantGormRepository
	inventory       *InventoryGormRepository
	addresses       *AddressGormRepository
	carts           *CartGormRepository
	cartItems       *CartItemGormRepository
	orders          *OrderGormRepository
	orderItems      *OrderItemGormRepository
	coupons         *CouponGormRepository
	reviews         *ReviewGormRepository
	auditLogs       *AuditLogGormRepository
}

func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		users:           NewUserGormRepository(db),
		categories:      NewCategoryGormRepository(db),
		products:        NewProductGormRepository(db),
		productImages:   NewProductImageGormRepository(db),
		productVariants: NewProductVariantGormRepository(db),
		inventory:       NewInventoryGormRepository(db),
		addresses:       NewAddressGormRepository(db),
		carts:           NewCartGormRepository(db),
		cartItems:       NewCartItemGormRepository(db),
		orders:          NewOrderGormRepository(db),
		orderItems:      NewOrderItemGormRepository(db),
		coupons:         NewCouponGormRepository(db),
		reviews:         NewReviewGormRepository(db),
		auditLogs:       NewAuditLogGormRepository(db),
	}
}

func (r *Repos) Users() repo.UserRepository                     { return r.users }
func (r *Repos) Categories() repo.CategoryRepository            { return r.categories }
func (r *Repos) Products() repo.ProductRepository               { return r.products }
func (r *Repos) ProductImages() repo.ProductImageRepository     { return r.productImages }
func (r *Repos) ProductVariants() repo.ProductVariantRepository { return r.productVariants }
func (r *Repos) Inventory() repo.InventoryRepository            { return r.inventory }
func (r *Repos) Addresses() repo.AddressRepository              { return r.addresses }
func (r *Repos) Carts() repo.CartRepository                     { return r.carts }
func (r *Repos) CartItems() repo.CartItemRepository             { return r.cartItems }
func (r *Repos) Orders() repo.OrderRepository                   { return r.orders }
func (r *Repos) OrderItems() repo.OrderItemRepository           { return r.orderItems }
func (r *Repos) Coupons() repo.CouponRepository                 { return r.coupons }
func (r *Repos) Reviews() repo.ReviewRepository                 { return r.reviews }
func (r *Repos) AuditLogs() repo.AuditLogRepository             { return r.auditLogs }

var _ repo.TxRepos = (*Repos)(nil)

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(NewRepos(tx))
	})
}
