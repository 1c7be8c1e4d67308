package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
)

type ProductUsecase struct {
	tx    repo.TransactionManager
	repos repo.TxRepos
}

// DI
func NewProductUsecase(tx repo.TransactionManager, repos repo.TxRepos) *ProductUsecase {
	return &ProductUsecase{tx: tx, repos: repos}
}

// GET /products の入力
type ListProductsInput struct {
	CategoryID *int64
	IsActive   *bool
	IsFeatured *bool
	Q          string
}

// 画像とvariant付きの商品
type ProductView struct {
	model.Product
	Images   []model.ProductImage   `json:"images"`
	Variants []model.ProductVariant `json:"variants"`
}

type ProductDetail struct {
	ProductView
	Reviews []model.Review `json:"reviews"`
}

// 作成時は Name / Description / CategoryID / BasePrice が必須。
// 更新時はnilの項目を変えない
type ProductInput struct {
	Name        *string
	Slug        *string
	Description *string
	CategoryID  *int64
	BasePrice   *int64
	Stock       *int64
	IsActive    *bool
	IsFeatured  *bool
}

type ProductImageInput struct {
	URL       string
	AltText   string
	IsPrimary bool
	SortOrder int
}

type ProductVariantInput struct {
	Name     *string
	Price    *int64
	Stock    *int64
	IsActive *bool
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) ([]ProductView, error) {
	if len(in.Q) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid q")
	}
	products, err := u.repos.Products().List(ctx, repo.ProductFilter{
		CategoryID: in.CategoryID,
		IsActive:   in.IsActive,
		IsFeatured: in.IsFeatured,
		Q:          strings.TrimSpace(in.Q),
	})
	if err != nil {
		return nil, dbError(err)
	}
	return u.attachMedia(ctx, products)
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (ProductDetail, error) {
	if productID <= 0 {
		return ProductDetail{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	p, err := u.repos.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetail{}, notFound("product")
	}
	if err != nil {
		return ProductDetail{}, dbError(err)
	}
	return u.detail(ctx, p)
}

func (u *ProductUsecase) GetProductBySlug(ctx context.Context, slug string) (ProductDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductDetail{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}
	p, err := u.repos.Products().FindBySlug(ctx, slug)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetail{}, notFound("product")
	}
	if err != nil {
		return ProductDetail{}, dbError(err)
	}
	return u.detail(ctx, p)
}

func (u *ProductUsecase) detail(ctx context.Context, p model.Product) (ProductDetail, error) {
	views, err := u.attachMedia(ctx, []model.Product{p})
	if err != nil {
		return ProductDetail{}, err
	}
	reviews, err := u.repos.Reviews().ListByProductID(ctx, p.ID)
	if err != nil {
		return ProductDetail{}, dbError(err)
	}
	return ProductDetail{ProductView: views[0], Reviews: reviews}, nil
}

// 画像とvariantはまとめて2クエリで取る
func (u *ProductUsecase) attachMedia(ctx context.Context, products []model.Product) ([]ProductView, error) {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	images, err := u.repos.ProductImages().ListByProductIDs(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}
	variants, err := u.repos.ProductVariants().ListByProductIDs(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}

	imagesBy := make(map[int64][]model.ProductImage, len(products))
	for _, img := range images {
		imagesBy[img.ProductID] = append(imagesBy[img.ProductID], img)
	}
	variantsBy := make(map[int64][]model.ProductVariant, len(products))
	for _, v := range variants {
		variantsBy[v.ProductID] = append(variantsBy[v.ProductID], v)
	}

	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		v := ProductView{
			Product:  p,
			Images:   imagesBy[p.ID],
			Variants: variantsBy[p.ID],
		}
		if v.Images == nil {
			v.Images = []model.ProductImage{}
		}
		if v.Variants == nil {
			v.Variants = []model.ProductVariant{}
		}
		out = append(out, v)
	}
	return out, nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Description == nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "description required")
	}
	if in.CategoryID == nil || *in.CategoryID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "categoryId required")
	}
	if in.BasePrice == nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "basePrice required")
	}

	p := model.Product{IsActive: true}
	applyProductInput(&p, in)
	if err := validateProduct(p); err != nil {
		return model.Product{}, err
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := ensureCategory(ctx, r, p.CategoryID); err != nil {
			return err
		}
		created, err := r.Products().Create(ctx, p)
		if errors.Is(err, repo.ErrConflict) {
			return NewHTTPError(http.StatusConflict, "slug already exists")
		}
		if err != nil {
			return dbError(err)
		}
		out = created
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateProduct, model.AuditEntityProduct, created.ID, created)
	})
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in ProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("product")
		}
		if err != nil {
			return dbError(err)
		}

		after := before
		applyProductInput(&after, in)
		if err := validateProduct(after); err != nil {
			return err
		}
		if after.CategoryID != before.CategoryID {
			if err := ensureCategory(ctx, r, after.CategoryID); err != nil {
				return err
			}
		}

		if err := r.Products().Update(ctx, after); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return NewHTTPError(http.StatusConflict, "slug already exists")
			}
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("product")
			}
			return dbError(err)
		}
		out = after
		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateProduct, model.AuditEntityProduct, productID, map[string]interface{}{
			"before": before,
			"after":  after,
		})
	})
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}

// 論理削除。注文明細のスナップショットはそのまま残る
func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("product")
		}
		if err != nil {
			return dbError(err)
		}
		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("product")
			}
			return dbError(err)
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionDeleteProduct, model.AuditEntityProduct, productID, map[string]interface{}{
			"name": p.Name,
			"slug": p.Slug,
		})
	})
}

func (u *ProductUsecase) AdminAddImage(ctx context.Context, productID int64, in ProductImageInput) (model.ProductImage, error) {
	if productID <= 0 {
		return model.ProductImage{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return model.ProductImage{}, NewHTTPError(http.StatusBadRequest, "url required")
	}
	if _, err := u.findProduct(ctx, productID); err != nil {
		return model.ProductImage{}, err
	}

	img, err := u.repos.ProductImages().Create(ctx, model.ProductImage{
		ProductID: productID,
		URL:       url,
		AltText:   strings.TrimSpace(in.AltText),
		IsPrimary: in.IsPrimary,
		SortOrder: in.SortOrder,
	})
	if err != nil {
		return model.ProductImage{}, dbError(err)
	}
	return img, nil
}

func (u *ProductUsecase) AdminDeleteImage(ctx context.Context, productID, imageID int64) error {
	if productID <= 0 || imageID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	img, err := u.repos.ProductImages().FindByID(ctx, imageID)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("image")
	}
	if err != nil {
		return dbError(err)
	}
	// 他の商品の画像は消さない
	if img.ProductID != productID {
		return notFound("image")
	}
	if err := u.repos.ProductImages().Delete(ctx, imageID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("image")
		}
		return dbError(err)
	}
	return nil
}

func (u *ProductUsecase) AdminAddVariant(ctx context.Context, productID int64, in ProductVariantInput) (model.ProductVariant, error) {
	if productID <= 0 {
		return model.ProductVariant{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return model.ProductVariant{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price == nil {
		return model.ProductVariant{}, NewHTTPError(http.StatusBadRequest, "price required")
	}
	if _, err := u.findProduct(ctx, productID); err != nil {
		return model.ProductVariant{}, err
	}

	v := model.ProductVariant{ProductID: productID, IsActive: true}
	applyVariantInput(&v, in)
	if err := validateVariant(v); err != nil {
		return model.ProductVariant{}, err
	}

	created, err := u.repos.ProductVariants().Create(ctx, v)
	if err != nil {
		return model.ProductVariant{}, dbError(err)
	}
	return created, nil
}

func (u *ProductUsecase) AdminUpdateVariant(ctx context.Context, productID, variantID int64, in ProductVariantInput) (model.ProductVariant, error) {
	if productID <= 0 || variantID <= 0 {
		return model.ProductVariant{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := u.repos.ProductVariants().FindByID(ctx, variantID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.ProductVariant{}, notFound("variant")
	}
	if err != nil {
		return model.ProductVariant{}, dbError(err)
	}
	if v.ProductID != productID {
		return model.ProductVariant{}, notFound("variant")
	}

	applyVariantInput(&v, in)
	if err := validateVariant(v); err != nil {
		return model.ProductVariant{}, err
	}
	if err := u.repos.ProductVariants().Update(ctx, v); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.ProductVariant{}, notFound("variant")
		}
		return model.ProductVariant{}, dbError(err)
	}
	return v, nil
}

func (u *ProductUsecase) findProduct(ctx context.Context, productID int64) (model.Product, error) {
	p, err := u.repos.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, notFound("product")
	}
	if err != nil {
		return model.Product{}, dbError(err)
	}
	return p, nil
}

func ensureCategory(ctx context.Context, r repo.TxRepos, categoryID int64) error {
	_, err := r.Categories().FindByID(ctx, categoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("category")
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}

func applyProductInput(p *model.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.BasePrice != nil {
		p.BasePrice = *in.BasePrice
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	switch {
	case in.Slug != nil:
		p.Slug = normalizeSlug(*in.Slug, p.Name)
	case p.Slug == "":
		p.Slug = slugify(p.Name)
	}
}

func validateProduct(p model.Product) error {
	if p.Name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if p.Slug == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid slug")
	}
	if p.CategoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "categoryId required")
	}
	if p.BasePrice < 0 {
		return NewHTTPError(http.StatusBadRequest, "basePrice must be >= 0")
	}
	if p.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return nil
}

func applyVariantInput(v *model.ProductVariant, in ProductVariantInput) {
	if in.Name != nil {
		v.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		v.Price = *in.Price
	}
	if in.Stock != nil {
		v.Stock = *in.Stock
	}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
}

func validateVariant(v model.ProductVariant) error {
	if v.Name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if v.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if v.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return nil
}
