package checkout

import "github.com/storefront/backend/internal/domain/shared"

// State is a step of a checkout attempt
type State string

const (
	StateIdle            State = "IDLE"
	StateRequiresAuth    State = "REQUIRES_AUTH"
	StateRequiresAddress State = "REQUIRES_ADDRESS"
	StateReadyForPayment State = "READY_FOR_PAYMENT"
	StateOrderPlaced     State = "ORDER_PLACED"
	StateFailed          State = "FAILED"
)

func (s State) String() string {
	return string(s)
}

func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateRequiresAuth, StateRequiresAddress, StateReadyForPayment, StateOrderPlaced, StateFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the attempt has ended
func (s State) IsTerminal() bool {
	return s == StateOrderPlaced || s == StateFailed
}

// LookupFailurePolicy decides what a failed address lookup does to the attempt
type LookupFailurePolicy string

const (
	// LookupFailureAllow continues to payment with a retryable notice
	LookupFailureAllow LookupFailurePolicy = "allow"
	// LookupFailureFail ends the attempt in StateFailed
	LookupFailureFail LookupFailurePolicy = "fail"
)

func (p LookupFailurePolicy) IsValid() bool {
	return p == LookupFailureAllow || p == LookupFailureFail
}

// NoticeAddressLookupFailed is shown when saved addresses could not be loaded
const NoticeAddressLookupFailed = "We could not load your saved addresses. Add an address to continue or try again."

var (
	ErrEmptyCart            = shared.NewDomainError("EMPTY_CART", "Cart is empty")
	ErrInvalidTransition    = shared.NewDomainError("INVALID_STATE_TRANSITION", "Checkout step is not available in the current state")
	ErrAddressRequired      = shared.NewDomainError("ADDRESS_REQUIRED", "Select a delivery address before confirming")
	ErrPaymentModeRequired  = shared.NewDomainError("PAYMENT_MODE_REQUIRED", "Select a payment mode before confirming")
	ErrSubmissionInProgress = shared.NewDomainError("SUBMISSION_IN_PROGRESS", "Order submission is already in progress")
	ErrSessionNotFound      = shared.NewDomainError("SESSION_NOT_FOUND", "Checkout session not found")
)
