package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

const AggregateTypeOrder = "Order"

const (
	EventTypeOrderPlaced               = "OrderPlaced"
	EventTypeOrderStatusChanged        = "OrderStatusChanged"
	EventTypeOrderPaymentStatusChanged = "OrderPaymentStatusChanged"
)

// OrderPlacedEvent is published after an order and its lines are stored
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID            `json:"order_id"`
	OrderNumber string               `json:"order_number"`
	UserID      uuid.UUID            `json:"user_id"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Currency    valueobject.Currency `json:"currency"`
	PaymentMode account.PaymentMode  `json:"payment_mode"`
	LineCount   int                  `json:"line_count"`
}

func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount,
		Currency:        o.Currency,
		PaymentMode:     o.PaymentMode,
		LineCount:       len(o.Lines),
	}
}

// OrderStatusChangedEvent is published on every lifecycle move
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	OldStatus   Status    `json:"old_status"`
	NewStatus   Status    `json:"new_status"`
	Reason      string    `json:"reason,omitempty"`
}

func NewOrderStatusChangedEvent(o *Order, old Status, reason string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OldStatus:       old,
		NewStatus:       o.Status,
		Reason:          reason,
	}
}

// OrderPaymentStatusChangedEvent is published when the back office records a payment outcome
type OrderPaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID     `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	OldStatus   PaymentStatus `json:"old_status"`
	NewStatus   PaymentStatus `json:"new_status"`
}

func NewOrderPaymentStatusChangedEvent(o *Order, old PaymentStatus) *OrderPaymentStatusChangedEvent {
	return &OrderPaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OldStatus:       old,
		NewStatus:       o.PaymentStatus,
	}
}
