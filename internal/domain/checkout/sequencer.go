package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/cart"
)

// Actor is the identity a checkout runs as
type Actor struct {
	UserID        uuid.UUID
	Authenticated bool
}

// Anonymous is an unauthenticated actor
func Anonymous() Actor {
	return Actor{}
}

// Authenticated is a signed-in actor
func Authenticated(userID uuid.UUID) Actor {
	return Actor{UserID: userID, Authenticated: userID != uuid.Nil}
}

// AddressLister is the part of the address store the sequencer reads
type AddressLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Address, error)
}

// Submission is what Confirm hands to order submission
type Submission struct {
	AddressID   uuid.UUID
	PaymentMode account.PaymentMode
}

// Sequencer gates a checkout attempt behind authentication and address capture.
// OrderPlaced is only reachable through BeginSubmission, which requires a
// non-empty cart, a selected address and a payment mode.
type Sequencer struct {
	state        State
	policy       LookupFailurePolicy
	addressID    *uuid.UUID
	paymentMode  account.PaymentMode
	pending      bool
	pendingSince time.Time
	notice       string
	failure      string
	orderID      *uuid.UUID
	lookupFailed bool
	expired      bool
}

// NewSequencer starts in StateIdle. An invalid policy falls back to LookupFailureAllow.
func NewSequencer(policy LookupFailurePolicy) *Sequencer {
	if !policy.IsValid() {
		policy = LookupFailureAllow
	}
	return &Sequencer{state: StateIdle, policy: policy}
}

func (s *Sequencer) State() State {
	return s.state
}

func (s *Sequencer) Policy() LookupFailurePolicy {
	return s.policy
}

func (s *Sequencer) Notice() string {
	return s.notice
}

func (s *Sequencer) Failure() string {
	return s.failure
}

func (s *Sequencer) PaymentMode() account.PaymentMode {
	return s.paymentMode
}

func (s *Sequencer) Pending() bool {
	return s.pending
}

func (s *Sequencer) AddressLookupFailed() bool {
	return s.lookupFailed
}

// SelectedAddressID returns the resolved address, if any
func (s *Sequencer) SelectedAddressID() (uuid.UUID, bool) {
	if s.addressID == nil {
		return uuid.Nil, false
	}
	return *s.addressID, true
}

// OrderID returns the placed order, if any
func (s *Sequencer) OrderID() (uuid.UUID, bool) {
	if s.orderID == nil {
		return uuid.Nil, false
	}
	return *s.orderID, true
}

// SetPolicy changes how later lookups are handled
func (s *Sequencer) SetPolicy(policy LookupFailurePolicy) {
	if policy.IsValid() {
		s.policy = policy
	}
}

// Checkout starts (or restarts) an attempt. An empty cart is rejected without
// changing state. Unauthenticated actors land in StateRequiresAuth without any
// address lookup.
func (s *Sequencer) Checkout(ctx context.Context, c *cart.Cart, actor Actor, addresses AddressLister) error {
	if s.pending {
		return ErrSubmissionInProgress
	}
	if c == nil || c.IsEmpty() {
		return ErrEmptyCart
	}

	s.reset()

	if !actor.Authenticated {
		s.state = StateRequiresAuth
		return nil
	}

	list, err := addresses.ListByUser(ctx, actor.UserID)
	if err != nil {
		s.lookupFailed = true
		if s.policy == LookupFailureFail {
			s.state = StateFailed
			s.failure = fmt.Sprintf("address lookup failed: %v", err)
			return nil
		}
		s.state = StateReadyForPayment
		s.notice = NoticeAddressLookupFailed
		return nil
	}

	if len(list) == 0 {
		s.state = StateRequiresAddress
		return nil
	}

	preferred, _ := account.NewBook(list).Preferred()
	id := preferred.ID
	s.addressID = &id
	s.state = StateReadyForPayment
	return nil
}

// LoginSucceeded sends an attempt blocked on authentication back to StateIdle
func (s *Sequencer) LoginSucceeded() error {
	if s.state != StateRequiresAuth {
		return ErrInvalidTransition
	}
	s.state = StateIdle
	return nil
}

// AddressSaved records a newly created address and moves to StateReadyForPayment.
// It is also accepted on the payment step, which is how a user recovers after a
// failed lookup.
func (s *Sequencer) AddressSaved(addressID uuid.UUID) error {
	if s.pending {
		return ErrSubmissionInProgress
	}
	if s.state != StateRequiresAddress && s.state != StateReadyForPayment {
		return ErrInvalidTransition
	}
	if addressID == uuid.Nil {
		return ErrAddressRequired
	}
	s.addressID = &addressID
	s.notice = ""
	s.lookupFailed = false
	s.state = StateReadyForPayment
	return nil
}

// SelectAddress switches among saved addresses on the payment step.
// Ownership is checked by the caller.
func (s *Sequencer) SelectAddress(addressID uuid.UUID) error {
	if s.pending {
		return ErrSubmissionInProgress
	}
	if s.state != StateReadyForPayment {
		return ErrInvalidTransition
	}
	if addressID == uuid.Nil {
		return ErrAddressRequired
	}
	s.addressID = &addressID
	return nil
}

// SelectPayment chooses one of the enumerated payment modes
func (s *Sequencer) SelectPayment(mode account.PaymentMode) error {
	if s.pending {
		return ErrSubmissionInProgress
	}
	if s.state != StateReadyForPayment {
		return ErrInvalidTransition
	}
	if !mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrPaymentModeRequired, mode)
	}
	s.paymentMode = mode
	return nil
}

// BeginSubmission checks every precondition for placing an order and marks the
// attempt pending. While pending, every other transition is refused.
func (s *Sequencer) BeginSubmission(c *cart.Cart) (Submission, error) {
	if s.pending {
		return Submission{}, ErrSubmissionInProgress
	}
	if s.state != StateReadyForPayment {
		return Submission{}, ErrInvalidTransition
	}
	if c == nil || c.IsEmpty() {
		return Submission{}, ErrEmptyCart
	}
	if s.addressID == nil {
		return Submission{}, ErrAddressRequired
	}
	if !s.paymentMode.IsValid() {
		return Submission{}, ErrPaymentModeRequired
	}
	s.pending = true
	s.pendingSince = time.Now()
	return Submission{AddressID: *s.addressID, PaymentMode: s.paymentMode}, nil
}

// ExpireStalePending fails a submission that has been pending longer than
// maxAge, which only happens when the process handling it died.
func (s *Sequencer) ExpireStalePending(maxAge time.Duration) bool {
	if !s.pending || maxAge <= 0 || time.Since(s.pendingSince) < maxAge {
		return false
	}
	s.pending = false
	s.expired = true
	s.failure = "order submission did not finish"
	s.state = StateFailed
	return true
}

// CompleteSubmission ends a pending attempt in StateOrderPlaced. An attempt
// that was expired while its submitter was still running is completed too,
// as long as nothing restarted the checkout since.
func (s *Sequencer) CompleteSubmission(orderID uuid.UUID) error {
	if !s.pending && !s.expiredAttempt() {
		return ErrInvalidTransition
	}
	s.pending = false
	s.expired = false
	s.failure = ""
	s.orderID = &orderID
	s.notice = ""
	s.state = StateOrderPlaced
	return nil
}

func (s *Sequencer) expiredAttempt() bool {
	return s.expired && s.state == StateFailed
}

// FailSubmission ends a pending attempt in StateFailed
func (s *Sequencer) FailSubmission(reason string) error {
	if !s.pending && !s.expiredAttempt() {
		return ErrInvalidTransition
	}
	s.pending = false
	s.expired = false
	s.failure = reason
	s.state = StateFailed
	return nil
}

// Reset abandons the attempt and returns to StateIdle
func (s *Sequencer) Reset() error {
	if s.pending {
		return ErrSubmissionInProgress
	}
	s.reset()
	return nil
}

func (s *Sequencer) reset() {
	s.state = StateIdle
	s.addressID = nil
	s.paymentMode = ""
	s.notice = ""
	s.failure = ""
	s.orderID = nil
	s.lookupFailed = false
	s.expired = false
}

// Snapshot is the persisted form of a Sequencer
type Snapshot struct {
	State        State               `json:"state"`
	Policy       LookupFailurePolicy `json:"policy"`
	AddressID    *uuid.UUID          `json:"address_id,omitempty"`
	PaymentMode  account.PaymentMode `json:"payment_mode,omitempty"`
	Pending      bool                `json:"pending,omitempty"`
	PendingSince time.Time           `json:"pending_since,omitempty"`
	Notice       string              `json:"notice,omitempty"`
	Failure      string              `json:"failure,omitempty"`
	OrderID      *uuid.UUID          `json:"order_id,omitempty"`
	LookupFailed bool                `json:"lookup_failed,omitempty"`
	Expired      bool                `json:"expired,omitempty"`
}

func (s *Sequencer) Snapshot() Snapshot {
	return Snapshot{
		State:        s.state,
		Policy:       s.policy,
		AddressID:    s.addressID,
		PaymentMode:  s.paymentMode,
		Pending:      s.pending,
		PendingSince: s.pendingSince,
		Notice:       s.notice,
		Failure:      s.failure,
		OrderID:      s.orderID,
		LookupFailed: s.lookupFailed,
		Expired:      s.expired,
	}
}

// RestoreSequencer rebuilds a sequencer, rejecting snapshots that break its guarantees
func RestoreSequencer(snap Snapshot) (*Sequencer, error) {
	if !snap.State.IsValid() {
		return nil, fmt.Errorf("unknown checkout state %q", snap.State)
	}
	if snap.State == StateOrderPlaced && snap.OrderID == nil {
		return nil, fmt.Errorf("placed checkout without order id")
	}
	if snap.Pending && snap.State != StateReadyForPayment {
		return nil, fmt.Errorf("pending submission in state %s", snap.State)
	}
	s := NewSequencer(snap.Policy)
	s.state = snap.State
	s.addressID = snap.AddressID
	s.paymentMode = snap.PaymentMode
	s.pending = snap.Pending
	s.pendingSince = snap.PendingSince
	s.notice = snap.Notice
	s.failure = snap.Failure
	s.orderID = snap.OrderID
	s.lookupFailed = snap.LookupFailed
	s.expired = snap.Expired && snap.State == StateFailed
	return s, nil
}

func (s *Sequencer) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func (s *Sequencer) UnmarshalJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	restored, err := RestoreSequencer(snap)
	if err != nil {
		return err
	}
	*s = *restored
	return nil
}
