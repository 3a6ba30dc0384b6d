package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderModel is the persistence model for the order header.
// IdempotencyKey is NULL when the client sent none, so the unique index only
// constrains real keys.
type OrderModel struct {
	AggregateModel
	OrderNumber     string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_number"`
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index;uniqueIndex:idx_orders_user_idempotency,priority:1"`
	Currency        string              `gorm:"type:varchar(3);not null"`
	TotalAmount     decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Status          order.Status        `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus   order.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMode     account.PaymentMode `gorm:"type:varchar(20);not null"`
	AddressID       *uuid.UUID          `gorm:"type:uuid"`
	PaymentMethodID *uuid.UUID          `gorm:"type:uuid"`
	IdempotencyKey  *string             `gorm:"type:varchar(100);uniqueIndex:idx_orders_user_idempotency,priority:2"`
	CancelReason    string              `gorm:"type:varchar(500)"`
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	PaidAt          *time.Time
	Lines           []OrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the header and any preloaded lines
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		UserID:            m.UserID,
		Currency:          valueobject.Currency(m.Currency),
		TotalAmount:       m.TotalAmount,
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		PaymentMode:       m.PaymentMode,
		AddressID:         m.AddressID,
		PaymentMethodID:   m.PaymentMethodID,
		CancelReason:      m.CancelReason,
		ConfirmedAt:       m.ConfirmedAt,
		ShippedAt:         m.ShippedAt,
		DeliveredAt:       m.DeliveredAt,
		CancelledAt:       m.CancelledAt,
		PaidAt:            m.PaidAt,
		Lines:             make([]order.Line, 0, len(m.Lines)),
	}
	if m.IdempotencyKey != nil {
		o.IdempotencyKey = *m.IdempotencyKey
	}
	for i := range m.Lines {
		o.Lines = append(o.Lines, m.Lines[i].ToDomain())
	}
	return o
}

// FromDomain copies header fields only. Lines are written separately.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.UserID = o.UserID
	m.Currency = string(o.Currency)
	m.TotalAmount = o.TotalAmount
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.PaymentMode = o.PaymentMode
	m.AddressID = o.AddressID
	m.PaymentMethodID = o.PaymentMethodID
	m.IdempotencyKey = nil
	if o.IdempotencyKey != "" {
		key := o.IdempotencyKey
		m.IdempotencyKey = &key
	}
	m.CancelReason = o.CancelReason
	m.ConfirmedAt = o.ConfirmedAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.PaidAt = o.PaidAt
}

func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderLineModel is one immutable line snapshot
type OrderLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_order_lines_product,priority:1"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_order_lines_product,priority:2"`
	Title     string          `gorm:"type:varchar(300);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity  int             `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Position  int             `gorm:"not null;default:0"`
	CreatedAt time.Time       `gorm:"not null"`
}

func (OrderLineModel) TableName() string {
	return "order_lines"
}

func (m *OrderLineModel) ToDomain() order.Line {
	return order.Line{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Title:     m.Title,
		UnitPrice: m.UnitPrice,
		Quantity:  m.Quantity,
		Amount:    m.Amount,
		Position:  m.Position,
	}
}

func OrderLineModelFromDomain(orderID uuid.UUID, l order.Line) *OrderLineModel {
	id := l.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &OrderLineModel{
		ID:        id,
		OrderID:   orderID,
		ProductID: l.ProductID,
		Title:     l.Title,
		UnitPrice: l.UnitPrice,
		Quantity:  l.Quantity,
		Amount:    l.Amount,
		Position:  l.Position,
		CreatedAt: time.Now(),
	}
}

// All returns every model for AutoMigrate in tests and local development
func All() []any {
	return []any{
		&ProductModel{},
		&AddressModel{},
		&PaymentMethodModel{},
		&OrderModel{},
		&OrderLineModel{},
	}
}
