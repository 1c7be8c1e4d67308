package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
	"acharam/internal/util"

	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	repos     repo.TxRepos
	publisher OrderEventPublisher
	clock     Clock
}

func NewOrderUsecase(tx repo.TransactionManager, repos repo.TxRepos, publisher OrderEventPublisher, clock Clock) *OrderUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &OrderUsecase{tx: tx, repos: repos, publisher: publisher, clock: clock}
}

type PlaceOrderInput struct {
	AddressID       int64
	CouponCode      string
	PaymentIntentID string
	IdempotencyKey  string
}

// 注文と明細（明細は作成時点のスナップショット）
type OrderDetail struct {
	model.Order
	Items []model.OrderItem `json:"items"`
}

// PlaceOrder はカートから注文を作る。
// 住所確認・在庫減算・クーポン消費・注文作成・カートクリアを1つのTxで行う
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderUsecase.PlaceOrder")
	defer span.End()

	if userID <= 0 {
		return OrderDetail{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return OrderDetail{}, NewHTTPError(http.StatusBadRequest, "invalid addressId")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderDetail{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency key")
	}

	var (
		out      OrderDetail
		replayed bool
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//address_idの存在確認＋所有チェック
		addr, err := r.Addresses().FindByID(ctx, in.AddressID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("address")
		}
		if err != nil {
			return dbError(err)
		}
		if addr.UserID != userID {
			return NewHTTPError(http.StatusForbidden, "Access denied")
		}

		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return dbError(err)
			}
			if found {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return dbError(err)
				}
				out = OrderDetail{Order: existing, Items: items}
				replayed = true
				return nil
			}
		}

		owner, err := model.UserCartOwner(userID)
		if err != nil {
			return NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		cart, err := r.Carts().FindByOwner(ctx, owner)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		if err != nil {
			return dbError(err)
		}

		// 買えなくなった行はカート表示と同じく外す
		lines, err := liveCartLines(ctx, r, cart.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		//価格と名前を確定し、在庫を減らす
		orderItems := make([]model.OrderItem, 0, len(lines))
		var subtotal int64
		for _, line := range lines {
			ci, p, v := line.CartItem, line.Product, line.Variant

			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.VariantID, ci.Quantity)
			if err != nil {
				return dbError(err)
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "out of stock")
			}

			item := model.OrderItem{
				ProductID:   p.ID,
				VariantID:   ci.VariantID,
				ProductName: p.Name,
				UnitPrice:   model.UnitPrice(p, v),
				Quantity:    ci.Quantity,
			}
			if v != nil {
				item.VariantName = v.Name
			}
			subtotal += item.LineTotal()
			orderItems = append(orderItems, item)
		}

		order := model.Order{
			UserID:    userID,
			AddressID: addr.ID,
			Status:    model.OrderStatusPending,
			Subtotal:  subtotal,
		}

		if code := model.NormalizeCouponCode(in.CouponCode); code != "" {
			_, discount, err := redeemCoupon(ctx, r, code, subtotal, u.clock.Now())
			if err != nil {
				return err
			}
			order.CouponCode = &code
			order.DiscountAmount = discount
		}
		order.TotalAmount = order.Subtotal + order.ShippingAmount - order.DiscountAmount
		if order.TotalAmount < 0 {
			order.TotalAmount = 0
		}
		if pi := strings.TrimSpace(in.PaymentIntentID); pi != "" {
			order.PaymentIntentID = &pi
		}
		if key != "" {
			order.IdempotencyKey = &key
		}

		created, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrConflict) {
			// 同じキーの注文が同時に作られた
			return NewHTTPError(http.StatusConflict, "duplicate order request")
		}
		if err != nil {
			return dbError(err)
		}

		items, err := r.OrderItems().CreateBulk(ctx, created.ID, orderItems)
		if err != nil {
			return dbError(err)
		}

		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return dbError(err)
		}

		out = OrderDetail{Order: created, Items: items}
		return nil
	})
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return OrderDetail{}, err
	}
	if replayed {
		return out, nil
	}

	util.OrdersPlacedTotal.Inc()
	util.OrderRevenuePaise.Add(float64(out.TotalAmount))
	util.GetLogger().Info("order placed",
		zap.Int64("order_id", out.ID),
		zap.Int64("user_id", userID),
		zap.Int64("total_amount", out.TotalAmount),
		zap.Int("items", len(out.Items)),
	)
	publishOrderEvent(ctx, u.publisher, newOrderEvent(EventOrderPlaced, out.Order, u.clock.Now()))
	return out, nil
}

// ListOrders は管理者なら全件、それ以外は本人の注文（新しい順）
func (u *OrderUsecase) ListOrders(ctx context.Context, userID int64, page, limit int) ([]model.Order, int64, error) {
	user, err := u.loadUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	f := repo.OrderListFilter{Page: page, Limit: limit}
	if !user.IsAdmin() {
		f.UserID = &user.ID
	}
	orders, total, err := u.repos.Orders().List(ctx, f)
	if err != nil {
		return nil, 0, dbError(err)
	}
	return orders, total, nil
}

// GetOrder は本人か管理者だけが見られる
func (u *OrderUsecase) GetOrder(ctx context.Context, userID int64, orderID int64) (OrderDetail, error) {
	if orderID <= 0 {
		return OrderDetail{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	user, err := u.loadUser(ctx, userID)
	if err != nil {
		return OrderDetail{}, err
	}

	o, err := u.repos.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderDetail{}, notFound("order")
	}
	if err != nil {
		return OrderDetail{}, dbError(err)
	}
	if o.UserID != user.ID && !user.IsAdmin() {
		return OrderDetail{}, NewHTTPError(http.StatusForbidden, "Access denied")
	}

	items, err := u.repos.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderDetail{}, dbError(err)
	}
	return OrderDetail{Order: o, Items: items}, nil
}

func (u *OrderUsecase) loadUser(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.repos.Users().FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return model.User{}, dbError(err)
	}
	return user, nil
}

// メトリクス用の失敗理由
func failureReason(err error) string {
	var rej *model.CouponRejectedError
	if errors.As(err, &rej) {
		return "coupon_" + string(rej.Reason)
	}
	if he, ok := AsHTTPError(err); ok {
		switch {
		case he.Message == "out of stock":
			return "out_of_stock"
		case he.Message == "cart is empty":
			return "empty_cart"
		case he.Status >= 500:
			return "internal"
		}
		return "rejected"
	}
	return "internal"
}
