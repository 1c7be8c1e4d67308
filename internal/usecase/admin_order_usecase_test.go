package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func placeTestOrder(t *testing.T, e orderEnv, productID int64, qty int64) OrderDetail {
	t.Helper()
	e.add(t, productID, nil, qty)
	out, err := e.orders.PlaceOrder(context.Background(), e.user.ID, PlaceOrderInput{AddressID: e.addr.ID})
	require.NoError(t, err)
	return out
}

func TestAdminOrderUsecase_UpdateStatus_ForwardAndAudit(t *testing.T) {
	ctx := context.Background()
	e := newOrderEnv(t)
	e.pub.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	admin := e.f.user(t, "admin@example.com", model.RoleAdmin)
	p := e.f.product(t, "mango", 100, 10)
	order := placeTestOrder(t, e, p.ID, 1)

	uc := NewAdminOrderUsecase(e.f.tx, e.pub, e.f.clock)
	got, err := uc.UpdateStatus(ctx, admin.ID, order.ID, AdminUpdateOrderStatusInput{Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, got.Status)

	logs, err := e.f.repos.AuditLogs().List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionUpdateOrderStatus, logs[0].Action)
	assert.Equal(t, admin.ID, logs[0].ActorUserID)
	var details map[string]string
	require.NoError(t, json.Unmarshal([]byte(logs[0].Details), &details))
	assert.Equal(t, map[string]string{"from": "PENDING", "to": "SHIPPED"}, details)

	e.pub.AssertCalled(t, "PublishEvent", mock.Anything, mock.Anything, mock.MatchedBy(func(ev OrderEvent) bool {
		return ev.EventType == EventOrderStatusChanged && ev.PrevStatus == model.OrderStatusPending && ev.ActorUserID == admin.ID
	}))

	// 後戻りは不可
	_, err = uc.UpdateStatus(ctx, admin.ID, order.ID, AdminUpdateOrderStatusInput{Status: "PENDING"})
	requireHTTPError(t, err, http.StatusBadRequest, "invalid status transition: SHIPPED -> PENDING")
}

func TestAdminOrderUsecase_UpdateStatus_CancelRestoresStock(t *testing.T) {
	ctx := context.Background()
	e := newOrderEnv(t)
	e.pub.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	admin := e.f.user(t, "admin@example.com", model.RoleAdmin)
	p := e.f.product(t, "mango", 100, 10)
	order := placeTestOrder(t, e, p.ID, 3)

	got, err := e.f.repos.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7), got.Stock)

	uc := NewAdminOrderUsecase(e.f.tx, e.pub, e.f.clock)
	_, err = uc.UpdateStatus(ctx, admin.ID, order.ID, AdminUpdateOrderStatusInput{Status: "CANCELLED"})
	require.NoError(t, err)

	got, err = e.f.repos.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Stock)

	_, err = uc.UpdateStatus(ctx, admin.ID, order.ID, AdminUpdateOrderStatusInput{Status: "PROCESSING"})
	requireHTTPError(t, err, http.StatusBadRequest, "invalid status transition: CANCELLED -> PROCESSING")
}

// 他のリクエストが変える前のステータスを読ませる
type staleOrderTx struct {
	inner repo.TransactionManager
	stale model.Order
}

func (s staleOrderTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return s.inner.WithinTx(ctx, func(r repo.TxRepos) error {
		return fn(staleOrderRepos{TxRepos: r, stale: s.stale})
	})
}

type staleOrderRepos struct {
	repo.TxRepos
	stale model.Order
}

func (r staleOrderRepos) Orders() repo.OrderRepository {
	return staleOrders{OrderRepository: r.TxRepos.Orders(), stale: r.stale}
}

type staleOrders struct {
	repo.OrderRepository
	stale model.Order
}

func (o staleOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	return o.stale, nil
}

func TestAdminOrderUsecase_UpdateStatus_ConcurrentCancelRestoresOnce(t *testing.T) {
	ctx := context.Background()
	e := newOrderEnv(t)
	e.pub.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	admin := e.f.user(t, "admin@example.com", model.RoleAdmin)
	p := e.f.product(t, "mango", 100, 10)
	order := placeTestOrder(t, e, p.ID, 3)

	before, err := e.f.repos.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusPending, before.Status)

	uc := NewAdminOrderUsecase(e.f.tx, e.pub, e.f.clock)
	_, err = uc.UpdateStatus(ctx, admin.ID, order.ID, AdminUpdateOrderStatusInput{Status: "CANCELLED"})
	require.NoError(t, err)

	// 同時に走ったもう一方はPENDINGを読んだまま更新しようとする
	late := NewAdminOrderUsecase(staleOrderTx{inner: e.f.tx, stale: before}, e.pub, e.f.clock)
	_, err = late.UpdateStatus(ctx, admin.ID, order.ID, AdminUpdateOrderStatusInput{Status: "CANCELLED"})
	requireHTTPError(t, err, http.StatusConflict, "order status changed concurrently")

	got, err := e.f.repos.Products().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Stock)

	logs, err := e.f.repos.AuditLogs().List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestAdminOrderUsecase_UpdateStatus_SameStatusIsNoop(t *testing.T) {
	ctx := context.Background()
	e := newOrderEnv(t)
	e.pub.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	admin := e.f.user(t, "admin@example.com", model.RoleAdmin)
	p := e.f.product(t, "mango", 100, 10)
	order := placeTestOrder(t, e, p.ID, 1)

	uc := NewAdminOrderUsecase(e.f.tx, e.pub, e.f.clock)
	got, err := uc.UpdateStatus(ctx, admin.ID, order.ID, AdminUpdateOrderStatusInput{Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)

	logs, err := e.f.repos.AuditLogs().List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestAdminOrderUsecase_UpdateStatus_BadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewAdminOrderUsecase(f.tx, nil, f.clock)

	_, err := uc.UpdateStatus(ctx, 1, 1, AdminUpdateOrderStatusInput{Status: "LOST"})
	requireHTTPError(t, err, http.StatusBadRequest, "invalid status")

	_, err = uc.UpdateStatus(ctx, 1, 9999, AdminUpdateOrderStatusInput{Status: "SHIPPED"})
	requireHTTPError(t, err, http.StatusNotFound, "order not found")
}

func TestAdminOrderUsecase_List(t *testing.T) {
	ctx := context.Background()
	e := newOrderEnv(t)
	e.pub.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	p := e.f.product(t, "mango", 100, 10)
	placeTestOrder(t, e, p.ID, 1)
	placeTestOrder(t, e, p.ID, 1)

	uc := NewAdminOrderUsecase(e.f.tx, nil, e.f.clock)
	out, err := uc.List(ctx, repo.OrderListFilter{Page: 1, Limit: 1, Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	assert.Len(t, out.Orders, 1)

	_, err = uc.List(ctx, repo.OrderListFilter{Page: 0, Limit: 10})
	requireHTTPError(t, err, http.StatusBadRequest, "invalid page")
	_, err = uc.List(ctx, repo.OrderListFilter{Page: 1, Limit: 101})
	requireHTTPError(t, err, http.StatusBadRequest, "invalid limit")
	_, err = uc.List(ctx, repo.OrderListFilter{Page: 1, Limit: 10, Status: "LOST"})
	requireHTTPError(t, err, http.StatusBadRequest, "invalid status")
}

func TestParseDateTimeRFC3339(t *testing.T) {
	got, err := ParseDateTimeRFC3339("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseDateTimeRFC3339("2025-01-02T03:04:05Z")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2025, got.Year())

	_, err = ParseDateTimeRFC3339("yesterday")
	assert.Error(t, err)
}
