package usecase

import (
	"context"
	"strconv"
	"time"

	"acharam/internal/domain/model"
	"acharam/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// 注文イベントの送信先（Kafkaなど）。keyは注文ID
type OrderEventPublisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

type OrderEvent struct {
	EventID     string            `json:"eventId"`
	EventType   string            `json:"eventType"`
	OccurredAt  time.Time         `json:"occurredAt"`
	OrderID     int64             `json:"orderId"`
	UserID      int64             `json:"userId"`
	Status      model.OrderStatus `json:"status"`
	PrevStatus  model.OrderStatus `json:"prevStatus,omitempty"`
	TotalAmount int64             `json:"totalAmount"`
	ActorUserID int64             `json:"actorUserId,omitempty"`
}

func newOrderEvent(eventType string, o model.Order, now time.Time) OrderEvent {
	return OrderEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		OccurredAt:  now,
		OrderID:     o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
	}
}

// ブローカーが落ちていてもレスポンスをこれ以上待たせない
const publishTimeout = 2 * time.Second

// コミット後に送る。失敗しても注文は成功扱いでログだけ残す。
// リクエストのキャンセルとは切り離し、publishTimeoutで打ち切る
func publishOrderEvent(ctx context.Context, p OrderEventPublisher, ev OrderEvent) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, strconv.FormatInt(ev.OrderID, 10), ev); err != nil {
		util.GetLogger().Warn("failed to publish order event",
			zap.String("event_type", ev.EventType),
			zap.Int64("order_id", ev.OrderID),
			zap.Error(err),
		)
	}
}
