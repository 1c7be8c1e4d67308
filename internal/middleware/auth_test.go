package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"acharam/internal/config"
	"acharam/internal/domain/model"
	"acharam/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// =====================
// UserRepository モック
// =====================

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

type okResponse struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

func mustMakeJWT(t *testing.T, sub string, role string, exp time.Time, method jwt.SigningMethod, secret string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "role": role, "iat": time.Now().Unix()}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

// Identity→(追加のmiddleware)→ハンドラ
func newEcho(mws ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	cfg := config.Config{JWTSecret: testSecret}
	chain := append([]echo.MiddlewareFunc{Identity(cfg)}, mws...)
	e.GET("/protected", func(c echo.Context) error {
		id, _ := c.Get(CtxUserIDKey).(int64)
		role, _ := c.Get(CtxUserRoleKey).(string)
		return c.JSON(http.StatusOK, okResponse{UserID: id, Role: role})
	}, chain...)
	return e
}

func doGet(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestIdentity_ValidBearer(t *testing.T) {
	e := newEcho(RequireAuth())
	token := mustMakeJWT(t, "12", "CUSTOMER", time.Now().Add(time.Hour), jwt.SigningMethodHS256, testSecret)

	rec := doGet(e, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body okResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.UserID)
	assert.Equal(t, "CUSTOMER", body.Role)
}

func TestIdentity_InvalidBearer(t *testing.T) {
	e := newEcho()
	tests := map[string]string{
		"not bearer":     "Basic abc",
		"wrong secret":   "Bearer " + mustMakeJWT(t, "1", "ADMIN", time.Now().Add(time.Hour), jwt.SigningMethodHS256, "other"),
		"expired":        "Bearer " + mustMakeJWT(t, "1", "ADMIN", time.Now().Add(-time.Hour), jwt.SigningMethodHS256, testSecret),
		"no exp":         "Bearer " + mustMakeJWT(t, "1", "ADMIN", time.Time{}, jwt.SigningMethodHS256, testSecret),
		"wrong alg":      "Bearer " + mustMakeJWT(t, "1", "ADMIN", time.Now().Add(time.Hour), jwt.SigningMethodHS512, testSecret),
		"non numeric id": "Bearer " + mustMakeJWT(t, "abc", "ADMIN", time.Now().Add(time.Hour), jwt.SigningMethodHS256, testSecret),
	}
	for name, authz := range tests {
		t.Run(name, func(t *testing.T) {
			rec := doGet(e, authz)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Invalid token", decodeMessage(t, rec))
		})
	}
}

func TestRequireAuth_NoIdentity(t *testing.T) {
	rec := doGet(newEcho(RequireAuth()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", decodeMessage(t, rec))
}

func TestIdentity_GuestPassesThrough(t *testing.T) {
	rec := doGet(newEcho(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body okResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.UserID)
}

func TestAdminRoleGuard(t *testing.T) {
	users := new(MockUserRepo)
	users.On("FindByID", mock.Anything, int64(1)).Return(model.User{ID: 1, Role: model.RoleAdmin}, nil)
	users.On("FindByID", mock.Anything, int64(2)).Return(model.User{ID: 2, Role: model.RoleCustomer}, nil)
	users.On("FindByID", mock.Anything, int64(3)).Return(model.User{}, repository.ErrNotFound)

	e := newEcho(RequireAuth(), AdminRoleGuard(users))
	bearer := func(id int64, role string) string {
		return "Bearer " + mustMakeJWT(t, strconv.FormatInt(id, 10), role, time.Now().Add(time.Hour), jwt.SigningMethodHS256, testSecret)
	}

	rec := doGet(e, bearer(1, "ADMIN"))
	assert.Equal(t, http.StatusOK, rec.Code)

	// トークンにADMINと書いてあってもDBがCUSTOMERなら拒否
	rec = doGet(e, bearer(2, "ADMIN"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", decodeMessage(t, rec))

	rec = doGet(e, bearer(3, "ADMIN"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
