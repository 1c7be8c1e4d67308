package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
	"acharam/internal/util"

	"github.com/google/uuid"
)

// CartUsecase は /cart の業務ロジック。
// 会員ならuser_id、ゲストならセッションのトークンでカートを決める
type CartUsecase struct {
	tx    repo.TransactionManager
	repos repo.TxRepos
	clock Clock
	// ゲストトークンの乱数部分
	randomSuffix func() string
}

func NewCartUsecase(tx repo.TransactionManager, repos repo.TxRepos, clock Clock) *CartUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CartUsecase{
		tx:           tx,
		repos:        repos,
		clock:        clock,
		randomSuffix: defaultGuestSuffix,
	}
}

// リクエストから分かる持ち主の手がかり。UserIDが優先
type CartIdentity struct {
	UserID     int64
	GuestToken string
}

type AddCartItemInput struct {
	ProductID int64
	VariantID *int64
	Quantity  int64
}

// 価格は表示時点の商品・variantの値
type CartLine struct {
	model.CartItem
	Product   model.Product         `json:"product"`
	Variant   *model.ProductVariant `json:"variant"`
	UnitPrice int64                 `json:"unitPrice"`
	LineTotal int64                 `json:"lineTotal"`
}

type CartView struct {
	model.Cart
	Items    []CartLine `json:"items"`
	Subtotal int64      `json:"subtotal"`
}

func defaultGuestSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ResolveOwner は持ち主を決める。
// 会員でもトークンもなければ新しいゲストトークンを発行し、2番目の戻り値で返す
func (u *CartUsecase) ResolveOwner(id CartIdentity) (model.CartOwner, string, error) {
	if id.UserID > 0 {
		owner, err := model.UserCartOwner(id.UserID)
		return owner, "", err
	}
	if strings.TrimSpace(id.GuestToken) != "" {
		owner, err := model.GuestCartOwner(id.GuestToken)
		return owner, "", err
	}
	token := fmt.Sprintf("guest_%d_%s", u.clock.Now().UnixMilli(), u.randomSuffix())
	owner, err := model.GuestCartOwner(token)
	if err != nil {
		return model.CartOwner{}, "", err
	}
	return owner, token, nil
}

// 持ち主のカートを返す（無ければ作る）
func (u *CartUsecase) resolveCart(ctx context.Context, r repo.TxRepos, id CartIdentity) (model.Cart, string, error) {
	owner, minted, err := u.ResolveOwner(id)
	if err != nil {
		return model.Cart{}, "", NewHTTPError(http.StatusBadRequest, "invalid cart owner")
	}
	cart, err := r.Carts().GetOrCreate(ctx, owner)
	if err != nil {
		return model.Cart{}, "", dbError(err)
	}
	util.CartsResolvedTotal.WithLabelValues(owner.String()).Inc()
	return cart, minted, nil
}

// 既存カートだけを探す。更新・削除では新しく作らない
func (u *CartUsecase) findCart(ctx context.Context, r repo.TxRepos, id CartIdentity) (model.Cart, error) {
	var (
		owner model.CartOwner
		err   error
	)
	switch {
	case id.UserID > 0:
		owner, err = model.UserCartOwner(id.UserID)
	case strings.TrimSpace(id.GuestToken) != "":
		owner, err = model.GuestCartOwner(id.GuestToken)
	default:
		return model.Cart{}, notFound("cart")
	}
	if err != nil {
		return model.Cart{}, notFound("cart")
	}
	cart, err := r.Carts().FindByOwner(ctx, owner)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, notFound("cart")
	}
	if err != nil {
		return model.Cart{}, dbError(err)
	}
	return cart, nil
}

// GetCart はカートを明細付きで返す。
func (u *CartUsecase) GetCart(ctx context.Context, id CartIdentity) (CartView, string, error) {
	ctx, span := util.StartSpan(ctx, "CartUsecase.GetCart")
	defer span.End()

	var (
		view   CartView
		minted string
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, tok, err := u.resolveCart(ctx, r, id)
		if err != nil {
			return err
		}
		minted = tok
		view, err = buildCartView(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartView{}, "", err
	}
	return view, minted, nil
}

// AddItem はカートに追加する（同じ商品・同じvariantは数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, id CartIdentity, in AddCartItemInput) (model.CartItem, string, error) {
	ctx, span := util.StartSpan(ctx, "CartUsecase.AddItem")
	defer span.End()

	if in.ProductID <= 0 {
		return model.CartItem{}, "", NewHTTPError(http.StatusBadRequest, "invalid productId")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 1 {
		return model.CartItem{}, "", NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var (
		out    model.CartItem
		minted string
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, tok, err := u.resolveCart(ctx, r, id)
		if err != nil {
			return err
		}
		minted = tok

		p, v, err := loadPurchasable(ctx, r, in.ProductID, in.VariantID)
		if err != nil {
			return err
		}

		existing, err := r.CartItems().FindLine(ctx, cart.ID, in.ProductID, in.VariantID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return dbError(err)
		}
		found := err == nil

		newQty := in.Quantity
		if found {
			newQty += existing.Quantity
		}
		if newQty > model.AvailableStock(p, v) {
			return NewHTTPError(http.StatusConflict, "insufficient stock")
		}

		if found {
			if err := r.CartItems().UpdateQuantity(ctx, existing.ID, newQty); err != nil {
				return dbError(err)
			}
			existing.Quantity = newQty
			out = existing
			return nil
		}

		created, err := r.CartItems().Create(ctx, model.CartItem{
			CartID:    cart.ID,
			ProductID: in.ProductID,
			VariantID: in.VariantID,
			Quantity:  newQty,
		})
		if err != nil {
			return dbError(err)
		}
		out = created
		return nil
	})
	if err != nil {
		return model.CartItem{}, "", err
	}
	return out, minted, nil
}

// 数量変更（所有チェック＋在庫チェック）。
func (u *CartUsecase) UpdateItem(ctx context.Context, id CartIdentity, cartItemID int64, qty int64) (model.CartItem, error) {
	if cartItemID <= 0 {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if qty < 1 {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	var out model.CartItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := ownedCartItem(ctx, u, r, id, cartItemID)
		if err != nil {
			return err
		}

		p, v, err := loadPurchasable(ctx, r, item.ProductID, item.VariantID)
		if err != nil {
			return err
		}
		if qty > model.AvailableStock(p, v) {
			return NewHTTPError(http.StatusConflict, "insufficient stock")
		}

		if err := r.CartItems().UpdateQuantity(ctx, item.ID, qty); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("cart item")
			}
			return dbError(err)
		}
		item.Quantity = qty
		out = item
		return nil
	})
	if err != nil {
		return model.CartItem{}, err
	}
	return out, nil
}

// 明細削除
func (u *CartUsecase) RemoveItem(ctx context.Context, id CartIdentity, cartItemID int64) error {
	if cartItemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := ownedCartItem(ctx, u, r, id, cartItemID)
		if err != nil {
			return err
		}
		if err := r.CartItems().DeleteByID(ctx, item.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("cart item")
			}
			return dbError(err)
		}
		return nil
	})
}

// カートを空にする。カートが無ければ何もしない
func (u *CartUsecase) Clear(ctx context.Context, id CartIdentity) error {
	cart, err := u.findCart(ctx, u.repos, id)
	if err != nil {
		if he, ok := AsHTTPError(err); ok && he.Status == http.StatusNotFound {
			return nil
		}
		return err
	}
	if err := u.repos.Carts().Clear(ctx, cart.ID); err != nil {
		return dbError(err)
	}
	return nil
}

// MergeGuestCart はログイン時にゲストカートを会員カートへ移す。
// 同じ行は数量を足し、ゲストカートは削除する
func (u *CartUsecase) MergeGuestCart(ctx context.Context, userID int64, guestToken string) error {
	if userID <= 0 || strings.TrimSpace(guestToken) == "" {
		return nil
	}
	guestOwner, err := model.GuestCartOwner(guestToken)
	if err != nil {
		return nil
	}
	userOwner, err := model.UserCartOwner(userID)
	if err != nil {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		guest, err := r.Carts().FindByOwner(ctx, guestOwner)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return dbError(err)
		}

		items, err := r.CartItems().ListByCartID(ctx, guest.ID)
		if err != nil {
			return dbError(err)
		}

		if len(items) > 0 {
			userCart, err := r.Carts().GetOrCreate(ctx, userOwner)
			if err != nil {
				return dbError(err)
			}
			for _, it := range items {
				if err := mergeCartLine(ctx, r, userCart.ID, it); err != nil {
					return err
				}
			}
		}

		if err := r.Carts().Clear(ctx, guest.ID); err != nil {
			return dbError(err)
		}
		if err := r.Carts().Delete(ctx, guest.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return dbError(err)
		}
		return nil
	})
}

// ゲストの1行を会員カートへ足す。
// 買えなくなった商品は捨て、数量は在庫で頭打ち
func mergeCartLine(ctx context.Context, r repo.TxRepos, cartID int64, it model.CartItem) error {
	p, v, err := loadPurchasable(ctx, r, it.ProductID, it.VariantID)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	stock := model.AvailableStock(p, v)

	line, err := r.CartItems().FindLine(ctx, cartID, it.ProductID, it.VariantID)
	switch {
	case err == nil:
		qty := min(line.Quantity+it.Quantity, stock)
		if qty <= line.Quantity {
			return nil
		}
		if err := r.CartItems().UpdateQuantity(ctx, line.ID, qty); err != nil {
			return dbError(err)
		}
		return nil
	case errors.Is(err, repo.ErrNotFound):
		qty := min(it.Quantity, stock)
		if qty < 1 {
			return nil
		}
		if _, err := r.CartItems().Create(ctx, model.CartItem{
			CartID:    cartID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  qty,
		}); err != nil {
			return dbError(err)
		}
		return nil
	default:
		return dbError(err)
	}
}

// 他人のカートの明細は存在しない扱い（404）
func ownedCartItem(ctx context.Context, u *CartUsecase, r repo.TxRepos, id CartIdentity, cartItemID int64) (model.CartItem, error) {
	cart, err := u.findCart(ctx, r, id)
	if err != nil {
		if isNotFound(err) {
			return model.CartItem{}, notFound("cart item")
		}
		return model.CartItem{}, err
	}
	item, err := r.CartItems().FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, notFound("cart item")
	}
	if err != nil {
		return model.CartItem{}, dbError(err)
	}
	if item.CartID != cart.ID {
		return model.CartItem{}, notFound("cart item")
	}
	return item, nil
}

// 購入可能な商品とvariant（指定があれば）を返す。
// 非公開・削除済み・他商品のvariantは404
func loadPurchasable(ctx context.Context, r repo.TxRepos, productID int64, variantID *int64) (model.Product, *model.ProductVariant, error) {
	p, err := r.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, nil, notFound("product")
	}
	if err != nil {
		return model.Product{}, nil, dbError(err)
	}
	if !p.IsActive {
		return model.Product{}, nil, notFound("product")
	}
	if variantID == nil {
		return p, nil, nil
	}

	v, err := r.ProductVariants().FindByID(ctx, *variantID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, nil, notFound("variant")
	}
	if err != nil {
		return model.Product{}, nil, dbError(err)
	}
	if v.ProductID != p.ID || !v.IsActive {
		return model.Product{}, nil, notFound("variant")
	}
	return p, &v, nil
}

func isNotFound(err error) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Status == http.StatusNotFound
}

// 買える行だけを商品・variant付きで返す。
// 削除・非公開になった商品やvariantの行はカートから消す
func liveCartLines(ctx context.Context, r repo.TxRepos, cartID int64) ([]CartLine, error) {
	items, err := r.CartItems().ListByCartID(ctx, cartID)
	if err != nil {
		return nil, dbError(err)
	}

	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		p, v, err := loadPurchasable(ctx, r, it.ProductID, it.VariantID)
		if isNotFound(err) {
			if err := r.CartItems().DeleteByID(ctx, it.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, dbError(err)
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		price := model.UnitPrice(p, v)
		lines = append(lines, CartLine{
			CartItem:  it,
			Product:   p,
			Variant:   v,
			UnitPrice: price,
			LineTotal: price * it.Quantity,
		})
	}
	return lines, nil
}

// cartの明細をまとめてCartViewを作る
func buildCartView(ctx context.Context, r repo.TxRepos, cart model.Cart) (CartView, error) {
	lines, err := liveCartLines(ctx, r, cart.ID)
	if err != nil {
		return CartView{}, err
	}
	var subtotal int64
	for _, l := range lines {
		subtotal += l.LineTotal
	}
	return CartView{Cart: cart, Items: lines, Subtotal: subtotal}, nil
}
