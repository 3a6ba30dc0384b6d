package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// PaymentMode is how an order will be paid. Gateways are simulated.
type PaymentMode string

const (
	PaymentModeCOD        PaymentMode = "cod"
	PaymentModeUPI        PaymentMode = "upi"
	PaymentModeCard       PaymentMode = "card"
	PaymentModeNetBanking PaymentMode = "netbanking"
)

// PaymentModes lists every selectable mode in display order
func PaymentModes() []PaymentMode {
	return []PaymentMode{PaymentModeCOD, PaymentModeUPI, PaymentModeCard, PaymentModeNetBanking}
}

func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCOD, PaymentModeUPI, PaymentModeCard, PaymentModeNetBanking:
		return true
	}
	return false
}

func (m PaymentMode) String() string {
	return string(m)
}

// ParsePaymentMode accepts the canonical names plus a few common spellings
func ParsePaymentMode(s string) (PaymentMode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "cash_on_delivery", "cash-on-delivery":
		v = string(PaymentModeCOD)
	case "net_banking", "net-banking":
		v = string(PaymentModeNetBanking)
	}
	m := PaymentMode(v)
	if !m.IsValid() {
		return "", shared.NewDomainError("INVALID_PAYMENT_MODE", "Payment mode must be one of cod, upi, card, netbanking")
	}
	return m, nil
}

// PaymentMethod is a saved payment preference. Details hold provider data such
// as a masked card number or UPI handle and are never interpreted here.
type PaymentMethod struct {
	shared.BaseEntity
	UserID      uuid.UUID
	Type        PaymentMode
	DisplayName string
	Details     map[string]string
	IsDefault   bool
}

func NewPaymentMethod(userID uuid.UUID, mode PaymentMode, displayName string, details map[string]string) (*PaymentMethod, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Payment method must belong to a user")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", "Payment mode must be one of cod, upi, card, netbanking")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if details == nil {
		details = map[string]string{}
	}
	return &PaymentMethod{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		Type:        mode,
		DisplayName: displayName,
		Details:     details,
	}, nil
}

func (p *PaymentMethod) entryID() uuid.UUID { return p.ID }
func (p *PaymentMethod) isDefault() bool    { return p.IsDefault }
func (p *PaymentMethod) markDefault(v bool) {
	p.IsDefault = v
	p.UpdatedAt = time.Now()
}
