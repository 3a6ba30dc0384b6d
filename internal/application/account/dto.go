package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/account"
)

// AddressRequest carries a new address. Field presence is checked by the domain
// so the response can name every missing field at once.
type AddressRequest struct {
	Name       string `json:"name" binding:"max=200"`
	Phone      string `json:"phone" binding:"max=30"`
	Street     string `json:"street" binding:"max=500"`
	City       string `json:"city" binding:"max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
	Category   string `json:"category" binding:"max=20"`
	IsDefault  bool   `json:"is_default"`
}

// Fields converts the request to domain address fields
func (r AddressRequest) Fields() account.AddressFields {
	return account.AddressFields{
		Name:       r.Name,
		Phone:      r.Phone,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Category:   account.AddressCategory(r.Category),
	}
}

// AddressResponse represents a saved address
type AddressResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Category   string    `json:"category"`
	IsDefault  bool      `json:"is_default"`
	OneLine    string    `json:"one_line"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToAddressResponse(a *account.Address) AddressResponse {
	return AddressResponse{
		ID:         a.ID,
		Name:       a.Name,
		Phone:      a.Phone,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Category:   string(a.Category),
		IsDefault:  a.IsDefault,
		OneLine:    a.OneLine(),
		CreatedAt:  a.CreatedAt,
	}
}

func ToAddressResponses(list []*account.Address) []AddressResponse {
	out := make([]AddressResponse, len(list))
	for i, a := range list {
		out[i] = ToAddressResponse(a)
	}
	return out
}

// PaymentMethodRequest saves a payment preference
type PaymentMethodRequest struct {
	Type        string            `json:"type" binding:"required"`
	DisplayName string            `json:"display_name" binding:"required,max=200"`
	Details     map[string]string `json:"details"`
	IsDefault   bool              `json:"is_default"`
}

// PaymentMethodResponse represents a saved payment method
type PaymentMethodResponse struct {
	ID          uuid.UUID         `json:"id"`
	Type        string            `json:"type"`
	DisplayName string            `json:"display_name"`
	Details     map[string]string `json:"details,omitempty"`
	IsDefault   bool              `json:"is_default"`
	CreatedAt   time.Time         `json:"created_at"`
}

func ToPaymentMethodResponse(p *account.PaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:          p.ID,
		Type:        string(p.Type),
		DisplayName: p.DisplayName,
		Details:     p.Details,
		IsDefault:   p.IsDefault,
		CreatedAt:   p.CreatedAt,
	}
}

func ToPaymentMethodResponses(list []*account.PaymentMethod) []PaymentMethodResponse {
	out := make([]PaymentMethodResponse, len(list))
	for i, p := range list {
		out[i] = ToPaymentMethodResponse(p)
	}
	return out
}
