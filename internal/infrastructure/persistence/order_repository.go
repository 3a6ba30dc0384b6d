package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateSubmission is returned when an order with the same user and
// idempotency key already exists
var ErrDuplicateSubmission = fmt.Errorf("%w: order already placed with this idempotency key", shared.ErrAlreadyExists)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// CreateOrder inserts the header row only
func (r *GormOrderRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(models.OrderModelFromDomain(o)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSubmission
	}
	return err
}

// AddOrderLines inserts line snapshots for orderID
func (r *GormOrderRepository) AddOrderLines(ctx context.Context, orderID uuid.UUID, lines []order.Line) error {
	if len(lines) == 0 {
		return order.ErrNoLines
	}
	rows := make([]*models.OrderLineModel, len(lines))
	for i, l := range lines {
		rows[i] = models.OrderLineModelFromDomain(orderID, l)
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

// Atomic runs fn with a repository bound to a single transaction
func (r *GormOrderRepository) Atomic(ctx context.Context, fn func(tx order.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormOrderRepository{db: tx})
	})
}

// orderLinesByPosition keeps lines in the order they had in the cart
func orderLinesByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID loads an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByIDForUser loads an order owned by userID
func (r *GormOrderRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "user_id = ? AND id = ?", userID, id)
}

// FindByIdempotencyKey finds the order userID placed with key
func (r *GormOrderRepository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*order.Order, error) {
	if key == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "user_id = ? AND idempotency_key = ?", userID, key)
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, args ...any) (*order.Order, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLinesByPosition).
		Where(query, args...).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists orders newest first unless the filter says otherwise
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).
		Preload("Lines", orderLinesByPosition)

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStatus writes status columns guarded by the version the caller loaded.
// On success the aggregate's version is bumped to match the row.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{
			"status":         o.Status,
			"payment_status": o.PaymentStatus,
			"cancel_reason":  o.CancelReason,
			"confirmed_at":   o.ConfirmedAt,
			"shipped_at":     o.ShippedAt,
			"delivered_at":   o.DeliveredAt,
			"cancelled_at":   o.CancelledAt,
			"paid_at":        o.PaidAt,
			"updated_at":     o.UpdatedAt,
			"version":        o.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("id = ?", o.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	o.IncrementVersion()
	return nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for _, key := range []string{"user_id", "status", "payment_status"} {
		if v, ok := filter.Filters[key]; ok && v != nil && v != "" {
			query = query.Where(key+" = ?", v)
		}
	}
	if filter.Search != "" {
		query = query.Where("order_number LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

var _ order.Repository = (*GormOrderRepository)(nil)
