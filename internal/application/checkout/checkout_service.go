package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaccount "github.com/storefront/backend/internal/application/account"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const genericSubmissionFailure = "We could not place your order. Please try again."

// OrderSubmitter places orders for confirmed checkouts
type OrderSubmitter interface {
	Submit(ctx context.Context, in apporder.SubmitInput) (*apporder.SubmitResult, error)
	Replay(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*apporder.SubmitResult, error)
}

// Service drives a session's checkout attempt through the sequencer
type Service struct {
	sessions       *SessionManager
	addresses      account.AddressRepository
	addressService *appaccount.AddressService
	submitter      OrderSubmitter
	claims         shared.IdempotencyStore
	claimTTL       time.Duration
	currency       string
	logger         *zap.Logger
}

func NewService(
	sessions *SessionManager,
	addresses account.AddressRepository,
	submitter OrderSubmitter,
	claims shared.IdempotencyStore,
	claimTTL time.Duration,
	currency string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if claimTTL <= 0 {
		claimTTL = 2 * time.Minute
	}
	// The claim must outlive the pending timeout, or a retry could start a
	// second submission while an expired one is still running.
	if floor := 2 * sessions.PendingTimeout(); claimTTL < floor {
		claimTTL = floor
	}
	return &Service{
		sessions:       sessions,
		addresses:      addresses,
		addressService: appaccount.NewAddressService(addresses),
		submitter:      submitter,
		claims:         claims,
		claimTTL:       claimTTL,
		currency:       currency,
		logger:         logger.Named("checkout"),
	}
}

// Get returns the current attempt. Saved addresses are listed for signed-in users.
func (s *Service) Get(ctx context.Context, sessionID string, actor checkout.Actor) (*CheckoutResponse, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := toCheckoutResponse(sess, s.currency)
	if actor.Authenticated {
		list, err := s.addresses.ListByUser(ctx, actor.UserID)
		if err != nil {
			s.logger.Warn("Failed to list addresses", zap.String("user_id", actor.UserID.String()), zap.Error(err))
		} else {
			resp.Addresses = appaccount.ToAddressResponses(list)
		}
	}
	return &resp, nil
}

// Start runs Checkout for the session's cart. A lookup failure never surfaces
// as an error; the lookup policy turns it into a notice or a failed attempt.
func (s *Service) Start(ctx context.Context, sessionID string, actor checkout.Actor) (*CheckoutResponse, error) {
	lister := &recordingLister{repo: s.addresses}
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *checkout.Session) error {
		if actor.Authenticated {
			sess.BindUser(actor.UserID)
		}
		return sess.Sequencer.Checkout(ctx, sess.Cart, actor, lister)
	})
	if err != nil {
		return nil, err
	}
	if lister.err != nil {
		s.logger.Warn("Address lookup failed during checkout",
			zap.String("session_id", sessionID),
			zap.String("policy", string(sess.Sequencer.Policy())),
			zap.Error(lister.err),
		)
	}

	resp := toCheckoutResponse(sess, s.currency)
	resp.Addresses = appaccount.ToAddressResponses(lister.list)
	return &resp, nil
}

// LoginSucceeded resumes an attempt that was waiting for sign-in
func (s *Service) LoginSucceeded(ctx context.Context, sessionID string, actor checkout.Actor) (*CheckoutResponse, error) {
	if !actor.Authenticated {
		return nil, shared.ErrUnauthorized
	}
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *checkout.Session) error {
		if err := sess.Sequencer.LoginSucceeded(); err != nil {
			return err
		}
		sess.BindUser(actor.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toCheckoutResponse(sess, s.currency)
	return &resp, nil
}

// StageAddressDraft keeps a partially entered address on the session
func (s *Service) StageAddressDraft(ctx context.Context, sessionID string, fields account.AddressFields) (*CheckoutResponse, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *checkout.Session) error {
		sess.StageAddressDraft(fields)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toCheckoutResponse(sess, s.currency)
	return &resp, nil
}

// SaveAddress persists a new address and makes it the attempt's delivery
// address. The entered fields stay staged as a draft until the save succeeds.
// If the attempt moved on while the address was being written, the address
// stays in the user's book and the response carries it with the current state.
func (s *Service) SaveAddress(ctx context.Context, sessionID string, actor checkout.Actor, req appaccount.AddressRequest) (*CheckoutResponse, error) {
	if !actor.Authenticated {
		return nil, shared.ErrUnauthorized
	}

	_, err := s.sessions.Update(ctx, sessionID, func(sess *checkout.Session) error {
		if sess.Sequencer.Pending() {
			return checkout.ErrSubmissionInProgress
		}
		switch sess.Sequencer.State() {
		case checkout.StateRequiresAddress, checkout.StateReadyForPayment:
		default:
			return checkout.ErrInvalidTransition
		}
		sess.StageAddressDraft(req.Fields())
		return nil
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.addressService.Create(ctx, actor.UserID, req)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Update(ctx, sessionID, func(sess *checkout.Session) error {
		if err := sess.Sequencer.AddressSaved(saved.ID); err != nil {
			return err
		}
		sess.DiscardAddressDraft()
		return nil
	})
	if errors.Is(err, checkout.ErrInvalidTransition) || errors.Is(err, checkout.ErrSubmissionInProgress) {
		s.logger.Info("Address saved after the checkout attempt moved on",
			zap.String("session_id", sessionID),
			zap.String("address_id", saved.ID.String()),
		)
		sess, err = s.sessions.Load(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	resp := s.withAddresses(ctx, sess, actor.UserID)
	resp.SavedAddress = saved
	return resp, nil
}

// SelectAddress switches the delivery address to one of the user's saved ones
func (s *Service) SelectAddress(ctx context.Context, sessionID string, actor checkout.Actor, addressID uuid.UUID) (*CheckoutResponse, error) {
	if !actor.Authenticated {
		return nil, shared.ErrUnauthorized
	}
	if _, err := s.addresses.FindByIDForUser(ctx, actor.UserID, addressID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, apporder.ErrAddressNotFound
		}
		return nil, err
	}
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *checkout.Session) error {
		return sess.Sequencer.SelectAddress(addressID)
	})
	if err != nil {
		return nil, err
	}
	resp := toCheckoutResponse(sess, s.currency)
	return &resp, nil
}

// SelectPayment sets the payment mode
func (s *Service) SelectPayment(ctx context.Context, sessionID string, mode string) (*CheckoutResponse, error) {
	pm, err := account.ParsePaymentMode(mode)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *checkout.Session) error {
		return sess.Sequencer.SelectPayment(pm)
	})
	if err != nil {
		return nil, err
	}
	resp := toCheckoutResponse(sess, s.currency)
	return &resp, nil
}

// Reset abandons the attempt
func (s *Service) Reset(ctx context.Context, sessionID string) (*CheckoutResponse, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *checkout.Session) error {
		return sess.Sequencer.Reset()
	})
	if err != nil {
		return nil, err
	}
	resp := toCheckoutResponse(sess, s.currency)
	return &resp, nil
}

// Confirm places the order. Only one confirmation per session runs at a time,
// across processes. On success the cart is cleared and the draft discarded; on
// failure the attempt ends in FAILED with a readable reason and the error is
// returned.
func (s *Service) Confirm(ctx context.Context, sessionID string, actor checkout.Actor, idempotencyKey string) (*ConfirmResponse, error) {
	if !actor.Authenticated {
		return nil, shared.ErrUnauthorized
	}

	if idempotencyKey != "" {
		prior, err := s.submitter.Replay(ctx, actor.UserID, idempotencyKey)
		if err == nil {
			return s.replay(ctx, sessionID, prior)
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	claim := sessionClaimKey(sessionID)
	claimed, err := s.claims.MarkProcessed(ctx, claim, s.claimTTL)
	if err != nil {
		return nil, fmt.Errorf("claim checkout session: %w", err)
	}
	if !claimed {
		return nil, checkout.ErrSubmissionInProgress
	}
	defer func() {
		if err := s.claims.Release(context.WithoutCancel(ctx), claim); err != nil {
			s.logger.Warn("Failed to release checkout claim", zap.String("session_id", sessionID), zap.Error(err))
		}
	}()

	var (
		submission checkout.Submission
		lines      []cart.Line
		began      bool
	)
	_, err = s.sessions.Update(ctx, sessionID, func(sess *checkout.Session) error {
		if sess.UserID != nil && *sess.UserID != actor.UserID {
			return shared.ErrForbidden
		}
		sub, err := sess.Sequencer.BeginSubmission(sess.Cart)
		if err != nil {
			return err
		}
		sess.BindUser(actor.UserID)
		submission = sub
		lines = sess.Cart.Lines()
		began = true
		s.sessions.markLive(sessionID)
		return nil
	})
	if began {
		defer s.sessions.clearLive(sessionID)
	}
	if err != nil {
		return nil, err
	}

	result, submitErr := s.submitter.Submit(ctx, apporder.SubmitInput{
		UserID:         actor.UserID,
		Lines:          lines,
		AddressID:      submission.AddressID,
		PaymentMode:    submission.PaymentMode,
		IdempotencyKey: idempotencyKey,
	})

	// The outcome is recorded even if the request was cancelled meanwhile
	finishCtx := context.WithoutCancel(ctx)
	sess, err := s.sessions.finishSubmission(finishCtx, sessionID, func(sess *checkout.Session) error {
		if submitErr != nil {
			return sess.Sequencer.FailSubmission(failureReason(submitErr))
		}
		return sess.CompleteOrder(result.OrderID)
	})
	if err != nil {
		s.logger.Error("Failed to record checkout outcome",
			zap.String("session_id", sessionID),
			zap.Bool("order_placed", submitErr == nil),
			zap.Error(err),
		)
		if submitErr != nil {
			return nil, submitErr
		}
		// The order exists; reporting a failure would invite a duplicate
		return s.placedWithoutSession(finishCtx, sessionID, result)
	}

	if submitErr != nil {
		s.logger.Warn("Order submission failed",
			zap.String("session_id", sessionID),
			zap.String("user_id", actor.UserID.String()),
			zap.Error(submitErr),
		)
		return nil, submitErr
	}

	s.logger.Info("Checkout completed",
		zap.String("session_id", sessionID),
		zap.String("order_id", result.OrderID.String()),
		zap.Bool("replayed", result.Replayed),
	)
	return &ConfirmResponse{
		CheckoutResponse: toCheckoutResponse(sess, s.currency),
		OrderNumber:      result.OrderNumber,
		Total:            result.Total,
		Replayed:         result.Replayed,
	}, nil
}

// placedWithoutSession answers a successful submission whose outcome could not
// be recorded on the session, because the checkout was restarted meanwhile.
func (s *Service) placedWithoutSession(ctx context.Context, sessionID string, result *apporder.SubmitResult) (*ConfirmResponse, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := toCheckoutResponse(sess, s.currency)
	resp.OrderID = &result.OrderID
	return &ConfirmResponse{
		CheckoutResponse: resp,
		OrderNumber:      result.OrderNumber,
		Total:            result.Total,
		Replayed:         result.Replayed,
	}, nil
}

// replay answers a retried confirmation without touching the session
func (s *Service) replay(ctx context.Context, sessionID string, prior *apporder.SubmitResult) (*ConfirmResponse, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := toCheckoutResponse(sess, s.currency)
	resp.OrderID = &prior.OrderID
	return &ConfirmResponse{
		CheckoutResponse: resp,
		OrderNumber:      prior.OrderNumber,
		Total:            prior.Total,
		Replayed:         true,
	}, nil
}

func (s *Service) withAddresses(ctx context.Context, sess *checkout.Session, userID uuid.UUID) *CheckoutResponse {
	resp := toCheckoutResponse(sess, s.currency)
	list, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to list addresses", zap.String("user_id", userID.String()), zap.Error(err))
		return &resp
	}
	resp.Addresses = appaccount.ToAddressResponses(list)
	return &resp
}

// failureReason is what the shopper sees on a failed attempt
func failureReason(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) && de.Code != apporder.ErrSubmissionFailed.Code {
		return de.Message
	}
	return genericSubmissionFailure
}

func sessionClaimKey(sessionID string) string {
	return "checkout:" + sessionID
}

// recordingLister keeps what the sequencer's lookup returned so the response
// can list the addresses without a second query.
type recordingLister struct {
	repo account.AddressRepository
	list []*account.Address
	err  error
}

func (l *recordingLister) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Address, error) {
	list, err := l.repo.ListByUser(ctx, userID)
	if err != nil {
		l.err = err
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	l.list = list
	return list, nil
}
