package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/cart"
)

// Session is the state one browser tab drives: its cart, its checkout attempt
// and any address the user has started typing during checkout.
type Session struct {
	ID           string                 `json:"id"`
	UserID       *uuid.UUID             `json:"user_id,omitempty"`
	Cart         *cart.Cart             `json:"cart"`
	Sequencer    *Sequencer             `json:"sequencer"`
	AddressDraft *account.AddressFields `json:"address_draft,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// NewSession creates an empty session. A blank id gets a random one.
func NewSession(id string, policy LookupFailurePolicy) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	return &Session{
		ID:        id,
		Cart:      cart.New(),
		Sequencer: NewSequencer(policy),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BindUser records which user the session belongs to once they sign in
func (s *Session) BindUser(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	s.UserID = &userID
}

// StageAddressDraft keeps a partially entered address. It is checkout-only
// data and never validated until the address is saved.
func (s *Session) StageAddressDraft(fields account.AddressFields) {
	f := fields
	s.AddressDraft = &f
}

func (s *Session) DiscardAddressDraft() {
	s.AddressDraft = nil
}

// CompleteOrder moves the sequencer to OrderPlaced, then clears the cart and
// drops the address draft.
func (s *Session) CompleteOrder(orderID uuid.UUID) error {
	if err := s.Sequencer.CompleteSubmission(orderID); err != nil {
		return err
	}
	s.Cart.Clear()
	s.DiscardAddressDraft()
	return nil
}

// Touch updates UpdatedAt
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// SessionStore holds sessions between requests
type SessionStore interface {
	// Get returns ErrSessionNotFound for unknown or expired ids
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}
