package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductStatus represents whether a product can be sold
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// IsValid reports whether s is a known status
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// Product is a sellable catalog entry (a book, a box set, a digital edition).
// Customers only read products; prices change through the admin catalog service.
type Product struct {
	shared.BaseAggregateRoot
	SKU         string
	Title       string
	Author      string
	Description string
	UnitPrice   decimal.Decimal
	ImageRef    string
	Status      ProductStatus
}

// NewProduct creates an active product
func NewProduct(sku, title string, unitPrice decimal.Decimal) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validatePrice(unitPrice); err != nil {
		return nil, err
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(strings.TrimSpace(sku)),
		Title:             strings.TrimSpace(title),
		UnitPrice:         unitPrice,
		Status:            ProductStatusActive,
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update replaces the descriptive fields
func (p *Product) Update(title, author, description, imageRef string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	p.Title = strings.TrimSpace(title)
	p.Author = strings.TrimSpace(author)
	p.Description = description
	p.ImageRef = strings.TrimSpace(imageRef)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ChangePrice sets a new unit price. Existing orders keep their snapshotted price.
func (p *Product) ChangePrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if price.Equal(p.UnitPrice) {
		return nil
	}

	old := p.UnitPrice
	p.UnitPrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductPriceChangedEvent(p, old))
	return nil
}

// Activate makes the product purchasable again
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.setStatus(ProductStatusActive)
	return nil
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.setStatus(ProductStatusInactive)
	return nil
}

func (p *Product) setStatus(status ProductStatus) {
	old := p.Status
	p.Status = status
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStatusChangedEvent(p, old, status))
}

// IsActive returns true if the product can be added to a cart
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	return nil
}
