package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func i64p(v int64) *int64   { return &v }
func boolp(b bool) *bool    { return &b }

func TestProductUsecase_AdminCreateProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)
	cat, err := f.repos.Categories().Create(ctx, model.Category{Name: "Mango Pickle", Slug: "mango-pickle"})
	require.NoError(t, err)
	uc := NewProductUsecase(f.tx, f.repos)

	p, err := uc.AdminCreateProduct(ctx, admin.ID, ProductInput{
		Name:        strp("Traditional Mango Pickle"),
		Description: strp("aged"),
		CategoryID:  &cat.ID,
		BasePrice:   i64p(29900),
		Stock:       i64p(50),
	})
	require.NoError(t, err)
	assert.Equal(t, "traditional-mango-pickle", p.Slug)
	assert.True(t, p.IsActive)

	logs, err := f.repos.AuditLogs().List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionCreateProduct, logs[0].Action)
	assert.Equal(t, p.ID, logs[0].EntityID)

	// 同じslugは409
	_, err = uc.AdminCreateProduct(ctx, admin.ID, ProductInput{
		Name:        strp("Traditional Mango Pickle"),
		Description: strp("again"),
		CategoryID:  &cat.ID,
		BasePrice:   i64p(100),
	})
	requireHTTPError(t, err, http.StatusConflict, "slug already exists")

	_, err = uc.AdminCreateProduct(ctx, admin.ID, ProductInput{
		Name:        strp("Orphan"),
		Description: strp("d"),
		CategoryID:  i64p(9999),
		BasePrice:   i64p(100),
	})
	requireHTTPError(t, err, http.StatusNotFound, "category not found")

	_, err = uc.AdminCreateProduct(ctx, admin.ID, ProductInput{Name: strp("x")})
	requireHTTPError(t, err, http.StatusBadRequest, "description required")
}

func TestProductUsecase_AdminUpdateProduct_PartialAndAudited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)
	p := f.product(t, "lemon", 19900, 45)
	uc := NewProductUsecase(f.tx, f.repos)

	got, err := uc.AdminUpdateProduct(ctx, admin.ID, p.ID, ProductInput{BasePrice: i64p(21900), IsFeatured: boolp(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(21900), got.BasePrice)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, int64(45), got.Stock)
	assert.True(t, got.IsFeatured)

	logs, err := f.repos.AuditLogs().List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	var details struct {
		Before model.Product `json:"before"`
		After  model.Product `json:"after"`
	}
	require.NoError(t, json.Unmarshal([]byte(logs[0].Details), &details))
	assert.Equal(t, int64(19900), details.Before.BasePrice)
	assert.Equal(t, int64(21900), details.After.BasePrice)

	_, err = uc.AdminUpdateProduct(ctx, admin.ID, p.ID, ProductInput{Stock: i64p(-1)})
	requireHTTPError(t, err, http.StatusBadRequest, "stock must be >= 0")
}

func TestProductUsecase_AdminDeleteProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)
	p := f.product(t, "garlic", 27900, 20)
	uc := NewProductUsecase(f.tx, f.repos)

	require.NoError(t, uc.AdminDeleteProduct(ctx, admin.ID, p.ID))

	_, err := uc.GetProduct(ctx, p.ID)
	requireHTTPError(t, err, http.StatusNotFound, "product not found")

	err = uc.AdminDeleteProduct(ctx, admin.ID, p.ID)
	requireHTTPError(t, err, http.StatusNotFound, "product not found")

	action := model.AuditActionDeleteProduct
	logs, err := f.repos.AuditLogs().List(ctx, repo.AuditLogFilter{Actions: []model.AuditAction{action}})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestProductUsecase_ReadsWithMedia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "mango", 29900, 50)
	f.variant(t, p.ID, "250g", 19900, 30)
	f.variant(t, p.ID, "1kg", 49900, 20)
	bare := f.product(t, "bare", 100, 1)
	uc := NewProductUsecase(f.tx, f.repos)

	_, err := uc.AdminAddImage(ctx, p.ID, ProductImageInput{URL: "/img/mango.png", IsPrimary: true})
	require.NoError(t, err)

	list, err := uc.ListProducts(ctx, ListProductsInput{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, v := range list {
		switch v.ID {
		case p.ID:
			assert.Len(t, v.Images, 1)
			assert.Len(t, v.Variants, 2)
		case bare.ID:
			assert.NotNil(t, v.Images)
			assert.Empty(t, v.Variants)
		}
	}

	detail, err := uc.GetProductBySlug(ctx, "mango")
	require.NoError(t, err)
	assert.Equal(t, p.ID, detail.ID)
	assert.Len(t, detail.Variants, 2)

	_, err = uc.GetProductBySlug(ctx, "nope")
	requireHTTPError(t, err, http.StatusNotFound, "product not found")
}

func TestProductUsecase_ImagesAndVariantsBelongToProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "mango", 29900, 50)
	other := f.product(t, "lemon", 19900, 50)
	uc := NewProductUsecase(f.tx, f.repos)

	img, err := uc.AdminAddImage(ctx, p.ID, ProductImageInput{URL: "/img/a.png"})
	require.NoError(t, err)
	requireHTTPError(t, uc.AdminDeleteImage(ctx, other.ID, img.ID), http.StatusNotFound, "image not found")
	require.NoError(t, uc.AdminDeleteImage(ctx, p.ID, img.ID))

	v, err := uc.AdminAddVariant(ctx, p.ID, ProductVariantInput{Name: strp("500g"), Price: i64p(29900), Stock: i64p(5)})
	require.NoError(t, err)
	assert.True(t, v.IsActive)

	_, err = uc.AdminUpdateVariant(ctx, other.ID, v.ID, ProductVariantInput{Price: i64p(1)})
	requireHTTPError(t, err, http.StatusNotFound, "variant not found")

	updated, err := uc.AdminUpdateVariant(ctx, p.ID, v.ID, ProductVariantInput{Stock: i64p(9), IsActive: boolp(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(9), updated.Stock)
	assert.False(t, updated.IsActive)
	assert.Equal(t, int64(29900), updated.Price)

	_, err = uc.AdminAddVariant(ctx, p.ID, ProductVariantInput{Name: strp("1kg")})
	requireHTTPError(t, err, http.StatusBadRequest, "price required")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "mango-pickle-avakaya", slugify("Mango Pickle (Avakaya)"))
	assert.Equal(t, "a-b", slugify("  A -- B  "))
	assert.Equal(t, "", slugify("!!!"))
	assert.Equal(t, "spicy-garlic", normalizeSlug("", "Spicy Garlic"))
	assert.Equal(t, "custom-slug", normalizeSlug("Custom Slug", "ignored"))
}
