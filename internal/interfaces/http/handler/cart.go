package handler

import (
	"github.com/gin-gonic/gin"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartHandler exposes the session cart. The session comes from X-Session-ID.
type CartHandler struct {
	BaseHandler
	cartService *checkoutapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *checkoutapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get godoc
// @Summary      Show the cart
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Cart session"
// @Success      200 {object} dto.Response{data=checkoutapp.CartResponse}
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.cartService.Get(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
// @Summary      Add one unit of a product
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Cart session"
// @Param        request body checkoutapp.AddItemRequest true "Product to add"
// @Success      200 {object} dto.Response{data=checkoutapp.CartResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req checkoutapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	cart, err := h.cartService.AddItem(c.Request.Context(), middleware.GetSessionID(c), req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// SetQuantity godoc
// @Summary      Replace a line's quantity
// @Description  Zero or a negative quantity removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        request body checkoutapp.SetQuantityRequest true "New quantity"
// @Success      200 {object} dto.Response{data=checkoutapp.CartResponse}
// @Router       /cart/items/{product_id} [put]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	productID, ok := h.pathUUID(c, "product_id", "product")
	if !ok {
		return
	}
	var req checkoutapp.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	cart, err := h.cartService.SetQuantity(c.Request.Context(), middleware.GetSessionID(c), productID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem godoc
// @Summary      Remove a line
// @Tags         cart
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=checkoutapp.CartResponse}
// @Router       /cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := h.pathUUID(c, "product_id", "product")
	if !ok {
		return
	}
	cart, err := h.cartService.RemoveItem(c.Request.Context(), middleware.GetSessionID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Success      200 {object} dto.Response{data=checkoutapp.CartResponse}
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	cart, err := h.cartService.Clear(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}
