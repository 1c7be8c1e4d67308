package usecase

import (
	"context"
	"testing"
	"time"

	"acharam/internal/domain/model"
	infraRepo "acharam/internal/infra/repository"
	"acharam/internal/testutil"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// =====================
// Mock: OrderEventPublisher
// =====================

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, key string, event interface{}) error {
	args := m.Called(ctx, key, event)
	return args.Error(0)
}

// sqliteに繋いだrepository一式
type fixture struct {
	repos *infraRepo.Repos
	tx    *infraRepo.TxManagerGorm
	clock fixedClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gormDB := testutil.NewSQLiteDB(t)
	return fixture{
		repos: infraRepo.NewRepos(gormDB),
		tx:    infraRepo.NewTxManagerGorm(gormDB),
		clock: fixedClock{now: testNow},
	}
}

func (f fixture) user(t *testing.T, email string, role model.Role) model.User {
	t.Helper()
	u := model.User{Email: email, PasswordHash: "x", Name: "User", Role: role}
	require.NoError(t, f.repos.Users().Create(context.Background(), &u))
	return u
}

func (f fixture) product(t *testing.T, slug string, price, stock int64) model.Product {
	t.Helper()
	ctx := context.Background()
	cat, err := f.repos.Categories().FindBySlug(ctx, "pickles")
	if err != nil {
		cat, err = f.repos.Categories().Create(ctx, model.Category{Name: "Pickles", Slug: "pickles"})
		require.NoError(t, err)
	}
	p, err := f.repos.Products().Create(ctx, model.Product{
		Name:        "Pickle " + slug,
		Slug:        slug,
		Description: "d",
		CategoryID:  cat.ID,
		BasePrice:   price,
		Stock:       stock,
		IsActive:    true,
	})
	require.NoError(t, err)
	return p
}

func (f fixture) variant(t *testing.T, productID int64, name string, price, stock int64) model.ProductVariant {
	t.Helper()
	v, err := f.repos.ProductVariants().Create(context.Background(), model.ProductVariant{
		ProductID: productID, Name: name, Price: price, Stock: stock, IsActive: true,
	})
	require.NoError(t, err)
	return v
}

func (f fixture) address(t *testing.T, userID int64) model.Address {
	t.Helper()
	a, err := f.repos.Addresses().Create(context.Background(), model.Address{
		UserID: userID, Name: "Priya", Phone: "+91 98765 43210", AddressLine1: "123 MG Road",
		City: "Mumbai", State: "Maharashtra", Pincode: "400001", IsDefault: true,
	})
	require.NoError(t, err)
	return a
}

func (f fixture) welcomeCoupon(t *testing.T, limit int64) model.Coupon {
	t.Helper()
	percent, maxDiscount, minOrder := int64(10), int64(10000), int64(30000)
	c, err := f.repos.Coupons().Create(context.Background(), model.Coupon{
		Code: "WELCOME10", DiscountPercent: &percent, MaxDiscount: &maxDiscount,
		MinOrderAmount: &minOrder, UsageLimit: &limit, IsActive: true,
	})
	require.NoError(t, err)
	return c
}

func requireHTTPError(t *testing.T, err error, status int, message string) {
	t.Helper()
	he, ok := AsHTTPError(err)
	require.True(t, ok, "want *HTTPError, got %v", err)
	require.Equal(t, status, he.Status)
	if message != "" {
		require.Equal(t, message, he.Message)
	}
}
