package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines order persistence. CreateOrder and AddOrderLines are
// separate capabilities; callers that need both to land together run them
// inside Atomic.
type Repository interface {
	// CreateOrder inserts the order header only
	CreateOrder(ctx context.Context, o *Order) error

	// AddOrderLines inserts line snapshots for an existing header
	AddOrderLines(ctx context.Context, orderID uuid.UUID, lines []Line) error

	// Atomic runs fn against a repository bound to one transaction.
	// Any error from fn rolls back everything fn wrote.
	Atomic(ctx context.Context, fn func(tx Repository) error) error

	// FindByID loads an order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUser loads an order only if userID owns it
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Order, error)

	// FindByIdempotencyKey returns the order a user already placed with key
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*Order, error)

	// FindAll lists order headers with lines. Filters: user_id, status, payment_status.
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// UpdateStatus persists status fields using the aggregate version as an optimistic lock
	UpdateStatus(ctx context.Context, o *Order) error
}
