package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/account"
)

// AddressService manages a user's saved delivery addresses
type AddressService struct {
	repo account.AddressRepository
}

func NewAddressService(repo account.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

// List returns the user's addresses, default first
func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]AddressResponse, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToAddressResponses(list), nil
}

// Create validates and saves an address. The user's first address, or one
// requested as default, becomes the only default.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	address, err := account.NewAddress(userID, req.Fields())
	if err != nil {
		return nil, err
	}
	address.IsDefault = req.IsDefault

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	changed := account.NewBook(existing).Add(address)
	if err := s.repo.SaveAll(ctx, changed...); err != nil {
		return nil, err
	}

	resp := ToAddressResponse(address)
	return &resp, nil
}

// SetDefault makes id the user's only default address
func (s *AddressService) SetDefault(ctx context.Context, userID, id uuid.UUID) ([]AddressResponse, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	book := account.NewBook(list)
	changed, err := book.SetDefault(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveAll(ctx, changed...); err != nil {
		return nil, err
	}
	return ToAddressResponses(book.Entries()), nil
}

// Delete removes an address, promoting another to default when needed
func (s *AddressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	promoted, err := account.NewBook(list).Remove(id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteForUser(ctx, userID, id); err != nil {
		return err
	}
	if len(promoted) > 0 {
		return s.repo.SaveAll(ctx, promoted...)
	}
	return nil
}
