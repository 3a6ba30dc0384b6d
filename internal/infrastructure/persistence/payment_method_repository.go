package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentMethodRepository implements account.PaymentMethodRepository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

func (r *GormPaymentMethodRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.PaymentMethod, error) {
	var rows []models.PaymentMethodModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	methods := make([]*account.PaymentMethod, len(rows))
	for i := range rows {
		methods[i] = rows[i].ToDomain()
	}
	return methods, nil
}

func (r *GormPaymentMethodRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*account.PaymentMethod, error) {
	var model models.PaymentMethodModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormPaymentMethodRepository) SaveAll(ctx context.Context, methods ...*account.PaymentMethod) error {
	if len(methods) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range methods {
			if err := tx.Save(models.PaymentMethodModelFromDomain(m)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ account.PaymentMethodRepository = (*GormPaymentMethodRepository)(nil)
