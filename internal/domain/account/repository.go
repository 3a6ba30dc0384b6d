package account

import (
	"context"

	"github.com/google/uuid"
)

// AddressRepository persists saved addresses
type AddressRepository interface {
	// ListByUser returns a user's addresses, default first then oldest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Address, error)
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	// SaveAll upserts addresses in one transaction
	SaveAll(ctx context.Context, addresses ...*Address) error
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
}

// PaymentMethodRepository persists saved payment methods
type PaymentMethodRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*PaymentMethod, error)
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*PaymentMethod, error)
	SaveAll(ctx context.Context, methods ...*PaymentMethod) error
}
