package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Line is a permanent snapshot of what was bought. It never refers back to
// live catalog pricing.
type Line struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
	Amount    decimal.Decimal
	Position  int // index in the cart the order was placed from
}

// LineSnapshot is the catalog data captured for one cart line at submission
type LineSnapshot struct {
	ProductID uuid.UUID
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Order is a placed customer order. After creation only the back office
// changes it, and only its statuses.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	UserID          uuid.UUID
	Currency        valueobject.Currency
	TotalAmount     decimal.Decimal
	Status          Status
	PaymentStatus   PaymentStatus
	PaymentMode     account.PaymentMode
	AddressID       *uuid.UUID
	PaymentMethodID *uuid.UUID
	IdempotencyKey  string
	Lines           []Line
	CancelReason    string
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	PaidAt          *time.Time
}

// NewOrderInput carries everything needed to place an order
type NewOrderInput struct {
	UserID          uuid.UUID
	Currency        valueobject.Currency
	PaymentMode     account.PaymentMode
	AddressID       uuid.UUID
	PaymentMethodID *uuid.UUID
	IdempotencyKey  string
	Lines           []LineSnapshot
}

var (
	ErrNoLines         = shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one line")
	ErrAddressRequired = shared.NewDomainError("ADDRESS_REQUIRED", "Order requires a delivery address")
)

// NewOrder validates input and builds a pending order whose total is the sum
// of its snapshotted lines.
func NewOrder(in NewOrderInput) (*Order, error) {
	if in.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Order must belong to a user")
	}
	if in.AddressID == uuid.Nil {
		return nil, ErrAddressRequired
	}
	if len(in.Lines) == 0 {
		return nil, ErrNoLines
	}
	if !in.PaymentMode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", fmt.Sprintf("Unsupported payment mode %q", in.PaymentMode))
	}
	currency, err := valueobject.ParseCurrency(string(in.Currency))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	if len(in.IdempotencyKey) > 100 {
		return nil, shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key cannot exceed 100 characters")
	}

	addressID := in.AddressID
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            in.UserID,
		Currency:          currency,
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusPending,
		PaymentMode:       in.PaymentMode,
		AddressID:         &addressID,
		PaymentMethodID:   in.PaymentMethodID,
		IdempotencyKey:    strings.TrimSpace(in.IdempotencyKey),
	}
	o.OrderNumber = GenerateOrderNumber(o.ID, o.CreatedAt)

	seen := make(map[uuid.UUID]struct{}, len(in.Lines))
	for _, snap := range in.Lines {
		if _, dup := seen[snap.ProductID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_LINE", fmt.Sprintf("Product %s appears twice in order", snap.ProductID))
		}
		seen[snap.ProductID] = struct{}{}

		line, err := newLine(o.ID, snap)
		if err != nil {
			return nil, err
		}
		line.Position = len(o.Lines)
		o.Lines = append(o.Lines, line)
	}
	o.recalculateTotal()

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

func newLine(orderID uuid.UUID, snap LineSnapshot) (Line, error) {
	if snap.ProductID == uuid.Nil {
		return Line{}, shared.NewDomainError("INVALID_LINE", "Order line is missing a product")
	}
	if strings.TrimSpace(snap.Title) == "" {
		return Line{}, shared.NewDomainError("INVALID_LINE", "Order line is missing a title")
	}
	if snap.Quantity < 1 {
		return Line{}, shared.NewDomainError("INVALID_QUANTITY", "Order line quantity must be positive")
	}
	if !snap.UnitPrice.IsPositive() {
		return Line{}, shared.NewDomainError("INVALID_PRICE", "Order line price must be positive")
	}
	return Line{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: snap.ProductID,
		Title:     strings.TrimSpace(snap.Title),
		UnitPrice: snap.UnitPrice,
		Quantity:  snap.Quantity,
		Amount:    snap.UnitPrice.Mul(decimal.NewFromInt(int64(snap.Quantity))),
	}, nil
}

// GenerateOrderNumber derives a human-readable number like ORD-20261015-1A2B3C4D
func GenerateOrderNumber(id uuid.UUID, at time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), short)
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Amount)
	}
	o.TotalAmount = total
}

// Total returns the order total as Money
func (o *Order) Total() valueobject.Money {
	m, err := valueobject.NewMoney(o.TotalAmount, o.Currency)
	if err != nil {
		return valueobject.Zero(o.Currency)
	}
	return m
}

// ItemCount is the sum of line quantities
func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// UpdateStatus moves the order along its lifecycle. reason is required for cancellation.
func (o *Order) UpdateStatus(target Status, reason string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	if target == StatusCancelled && strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	old := o.Status
	o.Status = target
	switch target {
	case StatusConfirmed:
		o.ConfirmedAt = &now
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
		o.CancelReason = strings.TrimSpace(reason)
	}
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old, reason))
	return nil
}

// UpdatePaymentStatus records a simulated payment outcome
func (o *Order) UpdatePaymentStatus(target PaymentStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", fmt.Sprintf("Unknown payment status %q", target))
	}
	if !o.PaymentStatus.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move payment from %s to %s", o.PaymentStatus, target))
	}
	if target == PaymentStatusPaid && o.Status == StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot take payment for a cancelled order")
	}

	now := time.Now()
	old := o.PaymentStatus
	o.PaymentStatus = target
	if target == PaymentStatusPaid {
		o.PaidAt = &now
	}
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderPaymentStatusChangedEvent(o, old))
	return nil
}

func (o *Order) IsPending() bool {
	return o.Status == StatusPending
}

func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}
