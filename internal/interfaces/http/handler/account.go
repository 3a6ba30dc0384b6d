package handler

import (
	"github.com/gin-gonic/gin"
	appaccount "github.com/storefront/backend/internal/application/account"
)

// AccountHandler manages a customer's saved addresses and payment methods
type AccountHandler struct {
	BaseHandler
	addresses *appaccount.AddressService
	methods   *appaccount.PaymentMethodService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(addresses *appaccount.AddressService, methods *appaccount.PaymentMethodService) *AccountHandler {
	return &AccountHandler{addresses: addresses, methods: methods}
}

// ListAddresses godoc
// @Summary      List saved addresses
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appaccount.AddressResponse}
// @Security     BearerAuth
// @Router       /account/addresses [get]
func (h *AccountHandler) ListAddresses(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	list, err := h.addresses.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// CreateAddress godoc
// @Summary      Save an address
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body appaccount.AddressRequest true "Address"
// @Success      201 {object} dto.Response{data=appaccount.AddressResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/addresses [post]
func (h *AccountHandler) CreateAddress(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req appaccount.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	address, err := h.addresses.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, address)
}

// SetDefaultAddress godoc
// @Summary      Make an address the default
// @Tags         account
// @Param        id path string true "Address ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]appaccount.AddressResponse}
// @Security     BearerAuth
// @Router       /account/addresses/{id}/default [put]
func (h *AccountHandler) SetDefaultAddress(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "address")
	if !ok {
		return
	}
	list, err := h.addresses.SetDefault(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// DeleteAddress godoc
// @Summary      Delete an address
// @Tags         account
// @Param        id path string true "Address ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /account/addresses/{id} [delete]
func (h *AccountHandler) DeleteAddress(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "address")
	if !ok {
		return
	}
	if err := h.addresses.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListPaymentMethods godoc
// @Summary      List saved payment methods
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appaccount.PaymentMethodResponse}
// @Security     BearerAuth
// @Router       /account/payment-methods [get]
func (h *AccountHandler) ListPaymentMethods(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	list, err := h.methods.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// CreatePaymentMethod godoc
// @Summary      Save a payment method
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body appaccount.PaymentMethodRequest true "Payment method"
// @Success      201 {object} dto.Response{data=appaccount.PaymentMethodResponse}
// @Security     BearerAuth
// @Router       /account/payment-methods [post]
func (h *AccountHandler) CreatePaymentMethod(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req appaccount.PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	method, err := h.methods.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, method)
}

// SetDefaultPaymentMethod godoc
// @Summary      Make a payment method the default
// @Tags         account
// @Param        id path string true "Payment method ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]appaccount.PaymentMethodResponse}
// @Security     BearerAuth
// @Router       /account/payment-methods/{id}/default [put]
func (h *AccountHandler) SetDefaultPaymentMethod(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "payment method")
	if !ok {
		return
	}
	list, err := h.methods.SetDefault(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}
