package handler

import (
	"github.com/gin-gonic/gin"
	appaccount "github.com/storefront/backend/internal/application/account"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CheckoutHandler drives the checkout attempt of the request's session.
// Routes run behind OptionalAuth: whether the shopper is signed in is part of
// the checkout state, not a precondition of the route.
type CheckoutHandler struct {
	BaseHandler
	checkout *checkoutapp.Service
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout *checkoutapp.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Get godoc
// @Summary      Show the checkout attempt
// @Tags         checkout
// @Produce      json
// @Param        X-Session-ID header string false "Cart session"
// @Success      200 {object} dto.Response{data=checkoutapp.CheckoutResponse}
// @Router       /checkout [get]
func (h *CheckoutHandler) Get(c *gin.Context) {
	resp, err := h.checkout.Get(c.Request.Context(), middleware.GetSessionID(c), middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Start godoc
// @Summary      Start checkout
// @Description  Moves to REQUIRES_AUTH, REQUIRES_ADDRESS or READY_FOR_PAYMENT
// @Tags         checkout
// @Produce      json
// @Param        X-Session-ID header string false "Cart session"
// @Success      200 {object} dto.Response{data=checkoutapp.CheckoutResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout [post]
func (h *CheckoutHandler) Start(c *gin.Context) {
	resp, err := h.checkout.Start(c.Request.Context(), middleware.GetSessionID(c), middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// LoginSucceeded godoc
// @Summary      Resume after sign-in
// @Tags         checkout
// @Produce      json
// @Success      200 {object} dto.Response{data=checkoutapp.CheckoutResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout/login [post]
func (h *CheckoutHandler) LoginSucceeded(c *gin.Context) {
	resp, err := h.checkout.LoginSucceeded(c.Request.Context(), middleware.GetSessionID(c), middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StageAddressDraft godoc
// @Summary      Keep a partially entered address
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body appaccount.AddressRequest true "Draft fields"
// @Success      200 {object} dto.Response{data=checkoutapp.CheckoutResponse}
// @Router       /checkout/address-draft [put]
func (h *CheckoutHandler) StageAddressDraft(c *gin.Context) {
	var req appaccount.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.checkout.StageAddressDraft(c.Request.Context(), middleware.GetSessionID(c), req.Fields())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SaveAddress godoc
// @Summary      Save a new delivery address
// @Description  Persists the address and selects it. The draft is kept when saving fails.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body appaccount.AddressRequest true "Address"
// @Success      200 {object} dto.Response{data=checkoutapp.CheckoutResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout/address [post]
func (h *CheckoutHandler) SaveAddress(c *gin.Context) {
	var req appaccount.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.checkout.SaveAddress(c.Request.Context(), middleware.GetSessionID(c), middleware.Actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SelectAddress godoc
// @Summary      Choose a saved address
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body checkoutapp.SelectAddressRequest true "Address"
// @Success      200 {object} dto.Response{data=checkoutapp.CheckoutResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout/address [put]
func (h *CheckoutHandler) SelectAddress(c *gin.Context) {
	var req checkoutapp.SelectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.checkout.SelectAddress(c.Request.Context(), middleware.GetSessionID(c), middleware.Actor(c), req.AddressID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SelectPayment godoc
// @Summary      Choose a payment mode
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body checkoutapp.SelectPaymentRequest true "cod, upi, card or netbanking"
// @Success      200 {object} dto.Response{data=checkoutapp.CheckoutResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout/payment [put]
func (h *CheckoutHandler) SelectPayment(c *gin.Context) {
	var req checkoutapp.SelectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.checkout.SelectPayment(c.Request.Context(), middleware.GetSessionID(c), req.PaymentMode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Confirm godoc
// @Summary      Place the order
// @Description  Retries with the same Idempotency-Key return the order already placed
// @Tags         checkout
// @Produce      json
// @Param        Idempotency-Key header string false "Client retry key"
// @Success      200 {object} dto.Response{data=checkoutapp.ConfirmResponse} "Replayed"
// @Success      201 {object} dto.Response{data=checkoutapp.ConfirmResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout/confirm [post]
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	resp, err := h.checkout.Confirm(
		c.Request.Context(),
		middleware.GetSessionID(c),
		middleware.Actor(c),
		c.GetHeader(middleware.IdempotencyKeyHeader),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Replayed {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

// Reset godoc
// @Summary      Abandon the attempt
// @Tags         checkout
// @Success      200 {object} dto.Response{data=checkoutapp.CheckoutResponse}
// @Router       /checkout [delete]
func (h *CheckoutHandler) Reset(c *gin.Context) {
	resp, err := h.checkout.Reset(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
