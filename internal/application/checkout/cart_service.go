package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/sync/singleflight"
)

// ErrProductUnavailable is returned when adding an unknown or inactive product
var ErrProductUnavailable = shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")

// CartService applies cart commands to a session's cart
type CartService struct {
	sessions *SessionManager
	products catalog.ProductRepository
	currency string
	lookups  singleflight.Group
}

func NewCartService(sessions *SessionManager, products catalog.ProductRepository, currency string) *CartService {
	return &CartService{
		sessions: sessions,
		products: products,
		currency: currency,
	}
}

// Get returns the session's cart
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartResponse, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := toCartResponse(sess.ID, sess.Cart, s.currency)
	return &resp, nil
}

// AddItem adds one unit of an active catalog product
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID uuid.UUID) (*CartResponse, error) {
	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, sessionID, cart.AddItemCommand{Item: cart.Item{
		ProductID: product.ID,
		Title:     product.Title,
		UnitPrice: product.UnitPrice,
		ImageRef:  product.ImageRef,
	}})
}

// SetQuantity replaces a line's quantity; quantity <= 0 removes the line
func (s *CartService) SetQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*CartResponse, error) {
	return s.apply(ctx, sessionID, cart.SetQuantityCommand{ProductID: productID, Quantity: quantity})
}

// RemoveItem drops a product's line
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*CartResponse, error) {
	return s.apply(ctx, sessionID, cart.RemoveItemCommand{ProductID: productID})
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, sessionID string) (*CartResponse, error) {
	return s.apply(ctx, sessionID, cart.ClearCommand{})
}

// apply refuses to touch a cart whose order is being submitted
func (s *CartService) apply(ctx context.Context, sessionID string, cmd cart.Command) (*CartResponse, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *checkout.Session) error {
		if sess.Sequencer.Pending() {
			return checkout.ErrSubmissionInProgress
		}
		return sess.Cart.Apply(cmd)
	})
	if err != nil {
		return nil, err
	}
	resp := toCartResponse(sess.ID, sess.Cart, s.currency)
	return &resp, nil
}

// activeProduct collapses concurrent lookups of the same product into one query
func (s *CartService) activeProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	v, err, _ := s.lookups.Do(productID.String(), func() (interface{}, error) {
		return s.products.FindByID(ctx, productID)
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	product := v.(*catalog.Product)
	if !product.IsActive() {
		return nil, ErrProductUnavailable
	}
	return product, nil
}
