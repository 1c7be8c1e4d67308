package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"acharam/internal/config"
	"acharam/internal/infra/broker"
	infraRepo "acharam/internal/infra/repository"
	"acharam/internal/infra/session"
	"acharam/internal/seed"
	"acharam/internal/server"
	"acharam/internal/testutil"
	auth "acharam/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
	Bearer  string
}

type ErrorResponse struct {
	Message        string `json:"message"`
	Reason         string `json:"reason"`
	MinOrderAmount *int64 `json:"minOrderAmount"`
}

type UserDTO struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	AccessToken string `json:"accessToken"`
}

type CartDTO struct {
	Items []struct {
		ID        int64 `json:"id"`
		Quantity  int64 `json:"quantity"`
		UnitPrice int64 `json:"unitPrice"`
	} `json:"items"`
	Subtotal int64 `json:"subtotal"`
}

type OrderDTO struct {
	ID             int64  `json:"id"`
	Status         string `json:"status"`
	Subtotal       int64  `json:"subtotal"`
	DiscountAmount int64  `json:"discountAmount"`
	TotalAmount    int64  `json:"totalAmount"`
	Items          []struct {
		ProductName string `json:"productName"`
		Price       int64  `json:"price"`
		Quantity    int64  `json:"quantity"`
	} `json:"items"`
}

type ProductDTO struct {
	ID    int64 `json:"id"`
	Stock int64 `json:"stock"`
}

// シード済みのsqliteでサーバーを立てる
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gormDB := testutil.NewSQLiteDB(t)
	require.NoError(t, seed.Run(
		context.Background(),
		infraRepo.NewTxManagerGorm(gormDB),
		auth.NewBcryptPasswordHasher(bcrypt.MinCost),
		zap.NewNop(),
	))

	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTokenTTL: 15 * time.Minute,
		Session:        config.SessionConfig{CookieName: "acharam_session", TTL: time.Hour},
		RequestTimeout: 10 * time.Second,
	}
	e, err := server.New(cfg, server.Deps{
		DB:         gormDB,
		Sessions:   session.NewMemoryStore(),
		Publisher:  broker.NopProducer{},
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func NewTestClient(t *testing.T, srv *httptest.Server) *TestClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &TestClient{
		BaseURL: srv.URL,
		HTTP:    &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}
}

func (c *TestClient) doJSON(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.Bearer)
	}

	resp, err := c.HTTP.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if out != nil && len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, out), "body: %s", data)
	}
	return resp.StatusCode
}

func (c *TestClient) login(t *testing.T, email, password string) UserDTO {
	t.Helper()
	var u UserDTO
	status := c.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, &u)
	require.Equal(t, http.StatusOK, status)
	return u
}

func (c *TestClient) productBySlug(t *testing.T, slug string) ProductDTO {
	t.Helper()
	var p ProductDTO
	require.Equal(t, http.StatusOK, c.doJSON(t, http.MethodGet, "/api/products/slug/"+slug, nil, &p))
	return p
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	c := NewTestClient(t, srv)

	var out map[string]string
	assert.Equal(t, http.StatusOK, c.doJSON(t, http.MethodGet, "/healthz", nil, &out))
	assert.Equal(t, "ok", out["status"])
}

func TestAuth_RegisterIgnoresRole(t *testing.T) {
	srv := newTestServer(t)
	c := NewTestClient(t, srv)

	var u UserDTO
	status := c.doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ravi", "email": "Ravi@Example.com", "password": "secret123", "role": "ADMIN",
	}, &u)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "CUSTOMER", u.Role)
	assert.Equal(t, "ravi@example.com", u.Email)

	// 登録でそのままログイン状態
	var me UserDTO
	require.Equal(t, http.StatusOK, c.doJSON(t, http.MethodGet, "/api/auth/me", nil, &me))
	assert.Equal(t, u.ID, me.ID)

	var errRes ErrorResponse
	status = NewTestClient(t, srv).doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ravi", "email": "ravi@example.com", "password": "secret123",
	}, &errRes)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already in use", errRes.Message)

	// ログアウト後はセッションが消える
	require.Equal(t, http.StatusOK, c.doJSON(t, http.MethodPost, "/api/auth/logout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, c.doJSON(t, http.MethodGet, "/api/auth/me", nil, nil))
}

func TestAuth_LoginAndBearer(t *testing.T) {
	srv := newTestServer(t)

	var errRes ErrorResponse
	status := NewTestClient(t, srv).doJSON(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "customer@example.com", "password": "wrong-pass"}, &errRes)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", errRes.Message)

	u := NewTestClient(t, srv).login(t, "customer@example.com", "customer123")
	require.NotEmpty(t, u.AccessToken)

	// Cookieなし、Bearerだけで通る
	bearer := &TestClient{BaseURL: srv.URL, HTTP: &http.Client{Timeout: 10 * time.Second}, Bearer: u.AccessToken}
	var me UserDTO
	require.Equal(t, http.StatusOK, bearer.doJSON(t, http.MethodGet, "/api/auth/me", nil, &me))
	assert.Equal(t, "customer@example.com", me.Email)

	bearer.Bearer = "broken"
	require.Equal(t, http.StatusUnauthorized, bearer.doJSON(t, http.MethodGet, "/api/auth/me", nil, &errRes))
	assert.Equal(t, "Invalid token", errRes.Message)
}

func TestCheckout_GuestCartToOrder(t *testing.T) {
	srv := newTestServer(t)
	c := NewTestClient(t, srv)
	mango := c.productBySlug(t, "traditional-mango-pickle")

	// ゲストでカートに入れる
	status := c.doJSON(t, http.MethodPost, "/api/cart/items", map[string]interface{}{
		"productId": mango.ID, "quantity": 2,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var cart CartDTO
	require.Equal(t, http.StatusOK, c.doJSON(t, http.MethodGet, "/api/cart", nil, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(59800), cart.Subtotal)

	// ログインでカートを引き継ぐ
	c.login(t, "customer@example.com", "customer123")
	cart = CartDTO{}
	require.Equal(t, http.StatusOK, c.doJSON(t, http.MethodGet, "/api/cart", nil, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].Quantity)

	var addresses []struct {
		ID int64 `json:"id"`
	}
	require.Equal(t, http.StatusOK, c.doJSON(t, http.MethodGet, "/api/addresses", nil, &addresses))
	require.NotEmpty(t, addresses)

	var order OrderDTO
	status = c.doJSON(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"addressId": addresses[0].ID, "couponCode": "welcome10",
	}, &order)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "PENDING", order.Status)
	assert.Equal(t, int64(59800), order.Subtotal)
	assert.Equal(t, int64(5980), order.DiscountAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Traditional Mango Pickle", order.Items[0].ProductName)

	assert.Equal(t, int64(48), c.productBySlug(t, "traditional-mango-pickle").Stock)

	cart = CartDTO{}
	require.Equal(t, http.StatusOK, c.doJSON(t, http.MethodGet, "/api/cart", nil, &cart))
	assert.Empty(t, cart.Items)

	// 商品が消えても明細は残る
	admin := NewTestClient(t, srv)
	admin.login(t, "admin@acharam.com", "admin123")
	require.Equal(t, http.StatusOK, admin.doJSON(t, http.MethodDelete, "/api/products/"+strconv.FormatInt(mango.ID, 10), nil, nil))

	var got OrderDTO
	require.Equal(t, http.StatusOK, c.doJSON(t, http.MethodGet, "/api/orders/"+strconv.FormatInt(order.ID, 10), nil, &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Traditional Mango Pickle", got.Items[0].ProductName)
	assert.Equal(t, int64(29900), got.Items[0].Price)

	// ステータス更新は管理者だけ
	statusPath := "/api/orders/" + strconv.FormatInt(order.ID, 10) + "/status"
	assert.Equal(t, http.StatusForbidden, c.doJSON(t, http.MethodPut, statusPath, map[string]string{"status": "SHIPPED"}, nil))

	var updated OrderDTO
	require.Equal(t, http.StatusOK, admin.doJSON(t, http.MethodPut, statusPath, map[string]string{"status": "SHIPPED"}, &updated))
	assert.Equal(t, "SHIPPED", updated.Status)

	var errRes ErrorResponse
	assert.Equal(t, http.StatusBadRequest, admin.doJSON(t, http.MethodPut, statusPath, map[string]string{"status": "PENDING"}, &errRes))
	assert.Equal(t, "invalid status transition: SHIPPED -> PENDING", errRes.Message)
}

func TestCoupons_Validate(t *testing.T) {
	srv := newTestServer(t)
	c := NewTestClient(t, srv)

	var errRes ErrorResponse
	status := c.doJSON(t, http.MethodPost, "/api/coupons/validate", map[string]interface{}{"code": "NOPE", "orderAmount": 50000}, &errRes)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "invalid_code", errRes.Reason)

	errRes = ErrorResponse{}
	status = c.doJSON(t, http.MethodPost, "/api/coupons/validate", map[string]interface{}{"code": "WELCOME10", "orderAmount": 10000}, &errRes)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "minimum_not_met", errRes.Reason)
	require.NotNil(t, errRes.MinOrderAmount)
	assert.Equal(t, int64(30000), *errRes.MinOrderAmount)

	var ok struct {
		Valid    bool  `json:"valid"`
		Discount int64 `json:"discount"`
	}
	require.Equal(t, http.StatusOK, c.doJSON(t, http.MethodPost, "/api/coupons/validate", map[string]interface{}{"code": "WELCOME10", "orderAmount": 200000}, &ok))
	assert.True(t, ok.Valid)
	assert.Equal(t, int64(10000), ok.Discount)
}

func TestPayment_NotConfigured(t *testing.T) {
	srv := newTestServer(t)

	var errRes ErrorResponse
	status := NewTestClient(t, srv).doJSON(t, http.MethodPost, "/api/create-payment-intent", map[string]interface{}{"amount": 29900}, &errRes)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "Payment gateway not configured", errRes.Message)
}

func TestAdminRoutes_Guarded(t *testing.T) {
	srv := newTestServer(t)

	guest := NewTestClient(t, srv)
	assert.Equal(t, http.StatusUnauthorized, guest.doJSON(t, http.MethodGet, "/api/admin/orders", nil, nil))

	customer := NewTestClient(t, srv)
	customer.login(t, "customer@example.com", "customer123")
	var errRes ErrorResponse
	assert.Equal(t, http.StatusForbidden, customer.doJSON(t, http.MethodGet, "/api/admin/audit-logs", nil, &errRes))
	assert.Equal(t, "Admin access required", errRes.Message)

	admin := NewTestClient(t, srv)
	admin.login(t, "admin@acharam.com", "admin123")
	assert.Equal(t, http.StatusOK, admin.doJSON(t, http.MethodGet, "/api/admin/orders", nil, nil))
	assert.Equal(t, http.StatusOK, admin.doJSON(t, http.MethodGet, "/api/admin/audit-logs", nil, nil))
}

func TestAdminAuditLogs_FilterAndTotal(t *testing.T) {
	srv := newTestServer(t)
	admin := NewTestClient(t, srv)
	admin.login(t, "admin@acharam.com", "admin123")

	var errRes ErrorResponse
	assert.Equal(t, http.StatusBadRequest, admin.doJSON(t, http.MethodGet, "/api/admin/audit-logs?action=DROP_TABLE", nil, &errRes))
	assert.Equal(t, "invalid action", errRes.Message)
	assert.Equal(t, http.StatusBadRequest, admin.doJSON(t, http.MethodGet, "/api/admin/audit-logs?action=create_product&entityType=ORDER", nil, &errRes))
	assert.Equal(t, "action does not match entityType", errRes.Message)

	resp, err := admin.HTTP.Get(srv.URL + "/api/admin/audit-logs?action=create_product,update_product&limit=1")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = strconv.ParseInt(resp.Header.Get("X-Total-Count"), 10, 64)
	assert.NoError(t, err)
}
