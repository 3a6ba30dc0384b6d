package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/account"
)

// PaymentMethodService manages saved payment preferences. Checkout only reads them.
type PaymentMethodService struct {
	repo account.PaymentMethodRepository
}

func NewPaymentMethodService(repo account.PaymentMethodRepository) *PaymentMethodService {
	return &PaymentMethodService{repo: repo}
}

func (s *PaymentMethodService) List(ctx context.Context, userID uuid.UUID) ([]PaymentMethodResponse, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToPaymentMethodResponses(list), nil
}

func (s *PaymentMethodService) Create(ctx context.Context, userID uuid.UUID, req PaymentMethodRequest) (*PaymentMethodResponse, error) {
	mode, err := account.ParsePaymentMode(req.Type)
	if err != nil {
		return nil, err
	}
	method, err := account.NewPaymentMethod(userID, mode, req.DisplayName, req.Details)
	if err != nil {
		return nil, err
	}
	method.IsDefault = req.IsDefault

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	changed := account.NewBook(existing).Add(method)
	if err := s.repo.SaveAll(ctx, changed...); err != nil {
		return nil, err
	}

	resp := ToPaymentMethodResponse(method)
	return &resp, nil
}

func (s *PaymentMethodService) SetDefault(ctx context.Context, userID, id uuid.UUID) ([]PaymentMethodResponse, error) {
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
	return ToPaymentMethodResponses(book.Entries()), nil
}
