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

// GormAddressRepository implements account.AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// ListByUser returns the default address first, then the rest oldest first
func (r *GormAddressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Address, error) {
	var rows []models.AddressModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	addresses := make([]*account.Address, len(rows))
	for i := range rows {
		addresses[i] = rows[i].ToDomain()
	}
	return addresses, nil
}

func (r *GormAddressRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*account.Address, error) {
	var model models.AddressModel
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

// SaveAll upserts addresses in one transaction so a default switch never
// leaves two defaults behind.
func (r *GormAddressRepository) SaveAll(ctx context.Context, addresses ...*account.Address) error {
	if len(addresses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range addresses {
			if err := tx.Save(models.AddressModelFromDomain(a)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormAddressRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AddressModel{}, "user_id = ? AND id = ?", userID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ account.AddressRepository = (*GormAddressRepository)(nil)
