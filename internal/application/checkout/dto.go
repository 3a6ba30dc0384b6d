package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appaccount "github.com/storefront/backend/internal/application/account"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/checkout"
)

// AddItemRequest adds one unit of a product
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// SetQuantityRequest replaces a line's quantity. Zero or less removes the line.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// SelectAddressRequest picks a saved address for delivery
type SelectAddressRequest struct {
	AddressID uuid.UUID `json:"address_id" binding:"required"`
}

// SelectPaymentRequest picks a payment mode
type SelectPaymentRequest struct {
	PaymentMode string `json:"payment_mode" binding:"required"`
}

// CartLineResponse is one cart line with its derived amount
type CartLineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageRef  string          `json:"image_ref,omitempty"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// CartResponse is the session's cart. Total is computed on every read.
type CartResponse struct {
	SessionID string             `json:"session_id"`
	Lines     []CartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
	Currency  string             `json:"currency"`
}

func toCartResponse(sessionID string, c *cart.Cart, currency string) CartResponse {
	lines := c.Lines()
	out := make([]CartLineResponse, len(lines))
	for i, l := range lines {
		out[i] = CartLineResponse{
			ProductID: l.ProductID,
			Title:     l.Title,
			UnitPrice: l.UnitPrice,
			ImageRef:  l.ImageRef,
			Quantity:  l.Quantity,
			Amount:    l.Amount(),
		}
	}
	return CartResponse{
		SessionID: sessionID,
		Lines:     out,
		ItemCount: c.ItemCount(),
		Total:     c.Total(),
		Currency:  currency,
	}
}

// CheckoutResponse is the state of the session's checkout attempt
type CheckoutResponse struct {
	SessionID         string                       `json:"session_id"`
	State             string                       `json:"state"`
	Pending           bool                         `json:"pending"`
	Notice            string                       `json:"notice,omitempty"`
	Failure           string                       `json:"failure,omitempty"`
	SelectedAddressID *uuid.UUID                   `json:"selected_address_id,omitempty"`
	PaymentMode       string                       `json:"payment_mode,omitempty"`
	PaymentModes      []string                     `json:"payment_modes"`
	OrderID           *uuid.UUID                   `json:"order_id,omitempty"`
	Addresses         []appaccount.AddressResponse `json:"addresses,omitempty"`
	AddressDraft      *account.AddressFields       `json:"address_draft,omitempty"`
	SavedAddress      *appaccount.AddressResponse  `json:"saved_address,omitempty"`
	Cart              CartResponse                 `json:"cart"`
}

func toCheckoutResponse(sess *checkout.Session, currency string) CheckoutResponse {
	seq := sess.Sequencer
	resp := CheckoutResponse{
		SessionID:    sess.ID,
		State:        seq.State().String(),
		Pending:      seq.Pending(),
		Notice:       seq.Notice(),
		Failure:      seq.Failure(),
		PaymentMode:  string(seq.PaymentMode()),
		PaymentModes: paymentModeNames(),
		AddressDraft: sess.AddressDraft,
		Cart:         toCartResponse(sess.ID, sess.Cart, currency),
	}
	if id, ok := seq.SelectedAddressID(); ok {
		resp.SelectedAddressID = &id
	}
	if id, ok := seq.OrderID(); ok {
		resp.OrderID = &id
	}
	return resp
}

func paymentModeNames() []string {
	modes := account.PaymentModes()
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = string(m)
	}
	return out
}

// ConfirmResponse reports a placed order along with the final checkout state
type ConfirmResponse struct {
	CheckoutResponse
	OrderNumber string          `json:"order_number"`
	Total       decimal.Decimal `json:"total"`
	Replayed    bool            `json:"replayed,omitempty"`
}
