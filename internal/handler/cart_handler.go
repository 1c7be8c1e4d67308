package handler

import (
	"net/http"

	"acharam/internal/middleware"
	"acharam/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cart のHTTP。会員でもゲストでも使える
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId"`
	Quantity  int64  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *CartHandler) RegisterRoutes(api *echo.Group, _ Guards) {
	g := api.Group("/cart")
	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.PUT("/items/:id", h.updateItem)
	g.DELETE("/items/:id", h.deleteItem)
	g.DELETE("", h.clear)
}

// 会員IDが優先、なければセッションのゲストトークン
func cartIdentity(c echo.Context) usecase.CartIdentity {
	var id usecase.CartIdentity
	if uid, ok := getUserIDFromContext(c); ok {
		id.UserID = uid
	}
	if sess := middleware.GetSession(c); sess != nil {
		id.GuestToken = sess.CartSessionID()
	}
	return id
}

// 新しく発行したゲストトークンをセッションに入れる
func rememberGuestToken(c echo.Context, minted string) {
	if minted == "" {
		return
	}
	if sess := middleware.GetSession(c); sess != nil {
		sess.SetCartSessionID(minted)
	}
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, minted, err := h.uc.GetCart(c.Request().Context(), cartIdentity(c))
	if err != nil {
		return writeError(c, err)
	}
	rememberGuestToken(c, minted)
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	item, minted, err := h.uc.AddItem(c.Request().Context(), cartIdentity(c), usecase.AddCartItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	rememberGuestToken(c, minted)
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	item, err := h.uc.UpdateItem(c.Request().Context(), cartIdentity(c), itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.RemoveItem(c.Request().Context(), cartIdentity(c), itemID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Item removed"})
}

func (h *CartHandler) clear(c echo.Context) error {
	if err := h.uc.Clear(c.Request().Context(), cartIdentity(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Cart cleared"})
}
