package handler

import (
	"net/http"

	"acharam/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(api *echo.Group, _ Guards) {
	api.GET("/products", h.list)
	api.GET("/products/slug/:slug", h.bySlug)
	api.GET("/products/:id", h.detail)
}

// GET /api/products?categoryId=&isActive=&isFeatured=&q=
func (h *ProductHandler) list(c echo.Context) error {
	categoryID, err := queryInt64Ptr(c, "categoryId")
	if err != nil {
		return badRequest(c, "invalid categoryId")
	}
	isActive, err := queryBoolPtr(c, "isActive")
	if err != nil {
		return badRequest(c, "invalid isActive")
	}
	isFeatured, err := queryBoolPtr(c, "isFeatured")
	if err != nil {
		return badRequest(c, "invalid isFeatured")
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		CategoryID: categoryID,
		IsActive:   isActive,
		IsFeatured: isFeatured,
		Q:          c.QueryParam("q"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) bySlug(c echo.Context) error {
	out, err := h.uc.GetProductBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
