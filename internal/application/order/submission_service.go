package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

var (
	// ErrSubmissionFailed means the order store did not accept the order.
	// Nothing was written; the caller decides whether to try again.
	ErrSubmissionFailed = shared.NewDomainError("ORDER_SUBMISSION_FAILED", "Order could not be placed")

	ErrProductUnavailable = shared.NewDomainError("PRODUCT_UNAVAILABLE", "A product in the cart is no longer available")
	ErrAddressNotFound    = shared.NewDomainError("ADDRESS_NOT_FOUND", "Delivery address not found")
)

// SubmitInput is a snapshot of a confirmed checkout
type SubmitInput struct {
	UserID         uuid.UUID
	Lines          []cart.Line
	AddressID      uuid.UUID
	PaymentMode    account.PaymentMode
	IdempotencyKey string
}

// SubmitResult identifies the placed order. Replayed is true when an earlier
// submission with the same idempotency key had already placed it.
type SubmitResult struct {
	OrderID     uuid.UUID
	OrderNumber string
	Total       decimal.Decimal
	Currency    string
	Replayed    bool
}

// SubmissionService turns a confirmed cart into a persisted order.
// Header and lines are written in one transaction and prices are re-read from
// the catalog, so cart display prices never reach an order.
type SubmissionService struct {
	orders         order.Repository
	products       catalog.ProductRepository
	addresses      account.AddressRepository
	paymentMethods account.PaymentMethodRepository
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	currency       valueobject.Currency
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// SubmissionOption configures a SubmissionService
type SubmissionOption func(*SubmissionService)

// WithIdempotencyTTL sets how long a submission key stays claimed
func WithIdempotencyTTL(ttl time.Duration) SubmissionOption {
	return func(s *SubmissionService) {
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

// WithPaymentMethods attaches the user's saved method matching the chosen mode
func WithPaymentMethods(repo account.PaymentMethodRepository) SubmissionOption {
	return func(s *SubmissionService) {
		s.paymentMethods = repo
	}
}

// WithEventPublisher publishes OrderPlaced after the order is stored
func WithEventPublisher(publisher shared.EventPublisher) SubmissionOption {
	return func(s *SubmissionService) {
		s.eventPublisher = publisher
	}
}

func NewSubmissionService(
	orders order.Repository,
	products catalog.ProductRepository,
	addresses account.AddressRepository,
	idempotency shared.IdempotencyStore,
	currency valueobject.Currency,
	logger *zap.Logger,
	opts ...SubmissionOption,
) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SubmissionService{
		orders:         orders,
		products:       products,
		addresses:      addresses,
		idempotency:    idempotency,
		currency:       currency,
		idempotencyTTL: shared.DefaultIdempotencyTTL,
		logger:         logger.Named("submission"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit places one order. A retry carrying a key that already produced an
// order returns that order instead of writing a second one.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if len(in.Lines) == 0 {
		return nil, checkout.ErrEmptyCart
	}
	key := strings.TrimSpace(in.IdempotencyKey)

	if key != "" {
		if existing, err := s.orders.FindByIdempotencyKey(ctx, in.UserID, key); err == nil {
			return s.replayed(existing), nil
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
		}

		claimed, err := s.idempotency.MarkProcessed(ctx, claimKey(in.UserID, key), s.idempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: claim idempotency key: %w", ErrSubmissionFailed, err)
		}
		if !claimed {
			return nil, checkout.ErrSubmissionInProgress
		}
	}

	result, err := s.place(ctx, in, key)
	if err != nil && key != "" {
		if relErr := s.idempotency.Release(context.WithoutCancel(ctx), claimKey(in.UserID, key)); relErr != nil {
			s.logger.Warn("Failed to release idempotency key", zap.String("user_id", in.UserID.String()), zap.Error(relErr))
		}
	}
	return result, err
}

// Replay returns the order an idempotency key already produced, or
// shared.ErrNotFound when the key has not placed one.
func (s *SubmissionService) Replay(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*SubmitResult, error) {
	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		return nil, shared.ErrNotFound
	}
	existing, err := s.orders.FindByIdempotencyKey(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	return s.replayed(existing), nil
}

func (s *SubmissionService) place(ctx context.Context, in SubmitInput, key string) (*SubmitResult, error) {
	if _, err := s.addresses.FindByIDForUser(ctx, in.UserID, in.AddressID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("%w: load address: %w", ErrSubmissionFailed, err)
	}

	snapshots, err := s.snapshotLines(ctx, in.Lines)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(order.NewOrderInput{
		UserID:          in.UserID,
		Currency:        s.currency,
		PaymentMode:     in.PaymentMode,
		AddressID:       in.AddressID,
		PaymentMethodID: s.savedMethodFor(ctx, in.UserID, in.PaymentMode),
		IdempotencyKey:  key,
		Lines:           snapshots,
	})
	if err != nil {
		return nil, err
	}

	err = s.orders.Atomic(ctx, func(tx order.Repository) error {
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		return tx.AddOrderLines(ctx, o.ID, o.Lines)
	})
	if err != nil {
		if key != "" && errors.Is(err, shared.ErrAlreadyExists) {
			// a concurrent submission with the same key won the unique index
			if existing, findErr := s.orders.FindByIdempotencyKey(ctx, in.UserID, key); findErr == nil {
				return s.replayed(existing), nil
			}
		}
		s.logger.Error("Order submission failed",
			zap.String("user_id", in.UserID.String()),
			zap.String("order_number", o.OrderNumber),
			zap.Int("lines", len(o.Lines)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	s.publish(ctx, o)
	s.logger.Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)

	return &SubmitResult{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Total:       o.TotalAmount,
		Currency:    string(o.Currency),
	}, nil
}

// snapshotLines prices each cart line from the catalog as it is right now
func (s *SubmissionService) snapshotLines(ctx context.Context, lines []cart.Line) ([]order.LineSnapshot, error) {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load products: %w", ErrSubmissionFailed, err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	snapshots := make([]order.LineSnapshot, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || !p.IsActive() {
			return nil, shared.NewDomainError(ErrProductUnavailable.Code,
				fmt.Sprintf("%q is no longer available", l.Title))
		}
		snapshots = append(snapshots, order.LineSnapshot{
			ProductID: p.ID,
			Title:     p.Title,
			UnitPrice: p.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return snapshots, nil
}

// savedMethodFor returns the user's preferred saved method of the given mode.
// Saved methods are optional for checkout, so lookup errors are only logged.
func (s *SubmissionService) savedMethodFor(ctx context.Context, userID uuid.UUID, mode account.PaymentMode) *uuid.UUID {
	if s.paymentMethods == nil {
		return nil
	}
	methods, err := s.paymentMethods.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Payment method lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil
	}
	var matching []*account.PaymentMethod
	for _, m := range methods {
		if m.Type == mode {
			matching = append(matching, m)
		}
	}
	if preferred, ok := account.NewBook(matching).Preferred(); ok {
		id := preferred.ID
		return &id
	}
	return nil
}

func (s *SubmissionService) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}

func (s *SubmissionService) replayed(o *order.Order) *SubmitResult {
	return &SubmitResult{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Total:       o.TotalAmount,
		Currency:    string(o.Currency),
		Replayed:    true,
	}
}

func claimKey(userID uuid.UUID, key string) string {
	return "order-submit:" + userID.String() + ":" + key
}
