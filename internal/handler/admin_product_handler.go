package handler

import (
	"net/http"

	"acharam/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Message string `json:"message"`
}

// 作成・更新共通。更新では送られた項目だけ変える
type ProductRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	CategoryID  *int64  `json:"categoryId"`
	BasePrice   *int64  `json:"basePrice"`
	Stock       *int64  `json:"stock"`
	IsActive    *bool   `json:"isActive"`
	IsFeatured  *bool   `json:"isFeatured"`
}

type ProductImageRequest struct {
	URL       string `json:"url"`
	AltText   string `json:"altText"`
	IsPrimary bool   `json:"isPrimary"`
	SortOrder int    `json:"sortOrder"`
}

type ProductVariantRequest struct {
	Name     *string `json:"name"`
	Price    *int64  `json:"price"`
	Stock    *int64  `json:"stock"`
	IsActive *bool   `json:"isActive"`
}

func (r ProductRequest) toInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		BasePrice:   r.BasePrice,
		Stock:       r.Stock,
		IsActive:    r.IsActive,
		IsFeatured:  r.IsFeatured,
	}
}

func (r ProductVariantRequest) toInput() usecase.ProductVariantInput {
	return usecase.ProductVariantInput{
		Name:     r.Name,
		Price:    r.Price,
		Stock:    r.Stock,
		IsActive: r.IsActive,
	}
}

// 商品・画像・variantの管理API
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(api *echo.Group, g Guards) {
	api.POST("/products", h.createProduct, g.Admin...)
	api.PUT("/products/:id", h.updateProduct, g.Admin...)
	api.DELETE("/products/:id", h.deleteProduct, g.Admin...)

	api.POST("/products/:id/images", h.addImage, g.Admin...)
	api.DELETE("/products/:id/images/:imageId", h.deleteImage, g.Admin...)

	api.POST("/products/:id/variants", h.addVariant, g.Admin...)
	api.PUT("/products/:id/variants/:variantId", h.updateVariant, g.Admin...)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, productID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, productID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Product deleted"})
}

func (h *AdminProductHandler) addImage(c echo.Context) error {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ProductImageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	img, err := h.uc.AdminAddImage(c.Request().Context(), productID, usecase.ProductImageInput{
		URL:       req.URL,
		AltText:   req.AltText,
		IsPrimary: req.IsPrimary,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, img)
}

func (h *AdminProductHandler) deleteImage(c echo.Context) error {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	imageID, ok := parseIDParam(c, "imageId")
	if !ok {
		return badRequest(c, "invalid imageId")
	}

	if err := h.uc.AdminDeleteImage(c.Request().Context(), productID, imageID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Image deleted"})
}

func (h *AdminProductHandler) addVariant(c echo.Context) error {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ProductVariantRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	v, err := h.uc.AdminAddVariant(c.Request().Context(), productID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *AdminProductHandler) updateVariant(c echo.Context) error {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	variantID, ok := parseIDParam(c, "variantId")
	if !ok {
		return badRequest(c, "invalid variantId")
	}

	var req ProductVariantRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	v, err := h.uc.AdminUpdateVariant(c.Request().Context(), productID, variantID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}
