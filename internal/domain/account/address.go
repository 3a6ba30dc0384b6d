package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// AddressCategory tags an address for display
type AddressCategory string

const (
	AddressCategoryHome  AddressCategory = "home"
	AddressCategoryWork  AddressCategory = "work"
	AddressCategoryOther AddressCategory = "other"
)

func (c AddressCategory) IsValid() bool {
	switch c {
	case AddressCategoryHome, AddressCategoryWork, AddressCategoryOther:
		return true
	}
	return false
}

// AddressFields is the user-entered part of an address
type AddressFields struct {
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Street     string          `json:"street"`
	City       string          `json:"city"`
	State      string          `json:"state"`
	PostalCode string          `json:"postal_code"`
	Country    string          `json:"country"`
	Category   AddressCategory `json:"category"`
}

// Normalize trims whitespace and lowercases the category
func (f AddressFields) Normalize() AddressFields {
	return AddressFields{
		Name:       strings.TrimSpace(f.Name),
		Phone:      strings.TrimSpace(f.Phone),
		Street:     strings.TrimSpace(f.Street),
		City:       strings.TrimSpace(f.City),
		State:      strings.TrimSpace(f.State),
		PostalCode: strings.TrimSpace(f.PostalCode),
		Country:    strings.TrimSpace(f.Country),
		Category:   AddressCategory(strings.ToLower(strings.TrimSpace(string(f.Category)))),
	}
}

// MissingFields lists the json names of empty fields, in form order
func (f AddressFields) MissingFields() []string {
	n := f.Normalize()
	var missing []string
	check := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	check("name", n.Name)
	check("phone", n.Phone)
	check("street", n.Street)
	check("city", n.City)
	check("state", n.State)
	check("postal_code", n.PostalCode)
	check("country", n.Country)
	check("category", string(n.Category))
	return missing
}

// Validate requires every field to be filled and the category to be known
func (f AddressFields) Validate() error {
	if missing := f.MissingFields(); len(missing) > 0 {
		return NewIncompleteAddressError(missing)
	}
	if !f.Normalize().Category.IsValid() {
		return shared.NewDomainError("INVALID_ADDRESS_CATEGORY", "Address category must be one of home, work, other")
	}
	return nil
}

// IncompleteAddressError names the fields that still need input
type IncompleteAddressError struct {
	*shared.DomainError
	Fields []string
}

func NewIncompleteAddressError(fields []string) *IncompleteAddressError {
	return &IncompleteAddressError{
		DomainError: shared.NewDomainError("INCOMPLETE_ADDRESS", "Address is missing: "+strings.Join(fields, ", ")),
		Fields:      fields,
	}
}

func (e *IncompleteAddressError) Unwrap() error {
	return e.DomainError
}

// Address is a saved delivery address owned by one user
type Address struct {
	shared.BaseEntity
	UserID uuid.UUID
	AddressFields
	IsDefault bool
}

// NewAddress validates fields and returns a non-default address
func NewAddress(userID uuid.UUID, fields AddressFields) (*Address, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Address must belong to a user")
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return &Address{
		BaseEntity:    shared.NewBaseEntity(),
		UserID:        userID,
		AddressFields: fields.Normalize(),
	}, nil
}

// IsComplete reports whether every field is filled
func (a *Address) IsComplete() bool {
	return len(a.MissingFields()) == 0
}

// OneLine renders the address for order summaries
func (a *Address) OneLine() string {
	return strings.Join([]string{a.Street, a.City, a.State + " " + a.PostalCode, a.Country}, ", ")
}

func (a *Address) entryID() uuid.UUID { return a.ID }
func (a *Address) isDefault() bool    { return a.IsDefault }
func (a *Address) markDefault(v bool) {
	a.IsDefault = v
	a.UpdatedAt = time.Now()
}
