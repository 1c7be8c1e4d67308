package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
	"acharam/internal/util"

	"go.uber.org/zap"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	publisher OrderEventPublisher
	clock     Clock
}

func NewAdminOrderUsecase(tx repo.TransactionManager, publisher OrderEventPublisher, clock Clock) *AdminOrderUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AdminOrderUsecase{tx: tx, publisher: publisher, clock: clock}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

type AdminOrderListOutput struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

// 注文一覧（status / userId / 期間で絞り込み）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.OrderListFilter) (AdminOrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" {
		st, err := model.ParseOrderStatus(f.Status)
		if err != nil {
			return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		f.Status = string(st)
	}

	var out AdminOrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, f)
		if err != nil {
			return dbError(err)
		}
		out = AdminOrderListOutput{Orders: orders, Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})
	if err != nil {
		return AdminOrderListOutput{}, err
	}
	return out, nil
}

// ステータス更新（CANCELLED なら在庫戻し)
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (model.Order, error) {
	ctx, span := util.StartSpan(ctx, "AdminOrderUsecase.UpdateStatus")
	defer span.End()

	if actorAdminUserID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	next, err := model.ParseOrderStatus(in.Status)
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var (
		out     model.Order
		prev    model.OrderStatus
		changed bool
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("order")
		}
		if err != nil {
			return dbError(err)
		}

		switch err := o.Status.CanTransitionTo(next); {
		case errors.Is(err, model.ErrOrderStatusUnchanged):
			// すでに同じなら何もしない（200）
			out = o
			return nil
		case err != nil:
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid status transition: %s -> %s", o.Status, next))
		}

		// 読んだ時点のステータスのままなら更新。競合した側は在庫に触らない
		switch err := r.Orders().UpdateStatus(ctx, orderID, o.Status, next); {
		case errors.Is(err, repo.ErrNotFound):
			return notFound("order")
		case errors.Is(err, repo.ErrConflict):
			return NewHTTPError(http.StatusConflict, "order status changed concurrently")
		case err != nil:
			return dbError(err)
		}

		// CANCELLEDのときだけ在庫戻し
		if next == model.OrderStatusCancelled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return dbError(err)
			}
			for _, it := range items {
				// 削除済み商品には戻さない
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.VariantID, it.Quantity); err != nil && !errors.Is(err, repo.ErrNotFound) {
					return dbError(err)
				}
			}
		}

		if err := writeAudit(ctx, r, actorAdminUserID, model.AuditActionUpdateOrderStatus, model.AuditEntityOrder, orderID, map[string]string{
			"from": string(o.Status),
			"to":   string(next),
		}); err != nil {
			return err
		}

		prev = o.Status
		changed = true
		o.Status = next
		out = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	if !changed {
		return out, nil
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(string(prev), string(next)).Inc()
	util.GetLogger().Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
		zap.Int64("actor_user_id", actorAdminUserID),
	)

	ev := newOrderEvent(EventOrderStatusChanged, out, u.clock.Now())
	ev.PrevStatus = prev
	ev.ActorUserID = actorAdminUserID
	publishOrderEvent(ctx, u.publisher, ev)
	return out, nil
}

// 期間パラメータ（RFC3339）。空ならnil
func ParseDateTimeRFC3339(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid datetime")
	}
	return &t, nil
}
