package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAddresses is an AddressLister returning fixed results and counting calls
type stubAddresses struct {
	list  []*account.Address
	err   error
	calls int
}

func (s *stubAddresses) ListByUser(_ context.Context, _ uuid.UUID) ([]*account.Address, error) {
	s.calls++
	return s.list, s.err
}

func cartWith(t *testing.T, lines ...cart.Item) *cart.Cart {
	t.Helper()
	c := cart.New()
	for _, it := range lines {
		c.AddItem(it)
	}
	return c
}

func item(price int64) cart.Item {
	return cart.Item{ProductID: uuid.New(), Title: "Book", UnitPrice: decimal.NewFromInt(price)}
}

func savedAddress(t *testing.T, userID uuid.UUID, isDefault bool) *account.Address {
	t.Helper()
	a, err := account.NewAddress(userID, account.AddressFields{
		Name: "Radha", Phone: "9820000000", Street: "1 Ghat Rd", City: "Puri",
		State: "Odisha", PostalCode: "752001", Country: "India", Category: account.AddressCategoryHome,
	})
	require.NoError(t, err)
	a.IsDefault = isDefault
	return a
}

// readySequencer drives a sequencer to READY_FOR_PAYMENT with an address and payment mode
func readySequencer(t *testing.T, c *cart.Cart) *Sequencer {
	t.Helper()
	userID := uuid.New()
	s := NewSequencer(LookupFailureAllow)
	require.NoError(t, s.Checkout(context.Background(), c, Authenticated(userID), &stubAddresses{list: []*account.Address{savedAddress(t, userID, true)}}))
	require.NoError(t, s.SelectPayment(account.PaymentModeCOD))
	return s
}

// ==================== Checkout gating ====================

func TestSequencer_Checkout(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("unauthenticated actor requires auth and leaves cart untouched", func(t *testing.T) {
		c := cartWith(t, item(299))
		before := c.Lines()
		lookup := &stubAddresses{}
		s := NewSequencer(LookupFailureAllow)

		require.NoError(t, s.Checkout(ctx, c, Anonymous(), lookup))

		assert.Equal(t, StateRequiresAuth, s.State())
		assert.Equal(t, before, c.Lines())
		assert.Zero(t, lookup.calls, "no address lookup without identity")
	})

	t.Run("unauthenticated always requires auth regardless of cart size", func(t *testing.T) {
		for n := 1; n <= 5; n++ {
			items := make([]cart.Item, n)
			for i := range items {
				items[i] = item(int64(10 * (i + 1)))
			}
			s := NewSequencer(LookupFailureAllow)
			require.NoError(t, s.Checkout(ctx, cartWith(t, items...), Anonymous(), &stubAddresses{}))
			assert.Equal(t, StateRequiresAuth, s.State())
		}
	})

	t.Run("authenticated with zero addresses requires address", func(t *testing.T) {
		s := NewSequencer(LookupFailureAllow)
		require.NoError(t, s.Checkout(ctx, cartWith(t, item(299)), Authenticated(userID), &stubAddresses{}))

		assert.Equal(t, StateRequiresAddress, s.State())
		_, ok := s.SelectedAddressID()
		assert.False(t, ok)
	})

	t.Run("authenticated with addresses is ready and preselects the default", func(t *testing.T) {
		first := savedAddress(t, userID, false)
		def := savedAddress(t, userID, true)
		s := NewSequencer(LookupFailureAllow)

		require.NoError(t, s.Checkout(ctx, cartWith(t, item(299)), Authenticated(userID), &stubAddresses{list: []*account.Address{first, def}}))

		assert.Equal(t, StateReadyForPayment, s.State())
		id, ok := s.SelectedAddressID()
		require.True(t, ok)
		assert.Equal(t, def.ID, id)
	})

	t.Run("without a default the first address is preselected", func(t *testing.T) {
		first := savedAddress(t, userID, false)
		s := NewSequencer(LookupFailureAllow)
		require.NoError(t, s.Checkout(ctx, cartWith(t, item(1)), Authenticated(userID), &stubAddresses{list: []*account.Address{first, savedAddress(t, userID, false)}}))

		id, _ := s.SelectedAddressID()
		assert.Equal(t, first.ID, id)
	})

	t.Run("empty cart is rejected without a transition", func(t *testing.T) {
		s := NewSequencer(LookupFailureAllow)
		err := s.Checkout(ctx, cart.New(), Authenticated(userID), &stubAddresses{})
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Equal(t, StateIdle, s.State())

		err = s.Checkout(ctx, nil, Anonymous(), &stubAddresses{})
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("a nil user id is never authenticated", func(t *testing.T) {
		assert.False(t, Authenticated(uuid.Nil).Authenticated)
	})
}

func TestSequencer_AddressLookupFailure(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	failing := &stubAddresses{err: errors.New("address store unavailable")}

	t.Run("allow policy continues to payment with a notice", func(t *testing.T) {
		s := NewSequencer(LookupFailureAllow)
		require.NoError(t, s.Checkout(ctx, cartWith(t, item(299)), Authenticated(userID), failing))

		assert.Equal(t, StateReadyForPayment, s.State())
		assert.Equal(t, NoticeAddressLookupFailed, s.Notice())
		assert.True(t, s.AddressLookupFailed())
	})

	t.Run("allow policy still refuses to confirm without an address", func(t *testing.T) {
		c := cartWith(t, item(299))
		s := NewSequencer(LookupFailureAllow)
		require.NoError(t, s.Checkout(ctx, c, Authenticated(userID), failing))
		require.NoError(t, s.SelectPayment(account.PaymentModeUPI))

		_, err := s.BeginSubmission(c)
		assert.ErrorIs(t, err, ErrAddressRequired)

		addrID := uuid.New()
		require.NoError(t, s.AddressSaved(addrID))
		assert.Empty(t, s.Notice())
		sub, err := s.BeginSubmission(c)
		require.NoError(t, err)
		assert.Equal(t, addrID, sub.AddressID)
	})

	t.Run("fail policy ends the attempt", func(t *testing.T) {
		s := NewSequencer(LookupFailureFail)
		require.NoError(t, s.Checkout(ctx, cartWith(t, item(299)), Authenticated(userID), failing))

		assert.Equal(t, StateFailed, s.State())
		assert.Contains(t, s.Failure(), "address store unavailable")
	})

	t.Run("unknown policy behaves like allow", func(t *testing.T) {
		s := NewSequencer("sometimes")
		assert.Equal(t, LookupFailureAllow, s.Policy())
	})
}

// ==================== Step transitions ====================

func TestSequencer_LoginSucceeded(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	c := cartWith(t, item(299))
	s := NewSequencer(LookupFailureAllow)

	assert.ErrorIs(t, s.LoginSucceeded(), ErrInvalidTransition)

	require.NoError(t, s.Checkout(ctx, c, Anonymous(), &stubAddresses{}))
	require.NoError(t, s.LoginSucceeded())
	assert.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Checkout(ctx, c, Authenticated(userID), &stubAddresses{}))
	assert.Equal(t, StateRequiresAddress, s.State())
}

func TestSequencer_AddressSaved(t *testing.T) {
	ctx := context.Background()
	s := NewSequencer(LookupFailureAllow)

	assert.ErrorIs(t, s.AddressSaved(uuid.New()), ErrInvalidTransition)

	require.NoError(t, s.Checkout(ctx, cartWith(t, item(1)), Authenticated(uuid.New()), &stubAddresses{}))
	assert.ErrorIs(t, s.AddressSaved(uuid.Nil), ErrAddressRequired)

	id := uuid.New()
	require.NoError(t, s.AddressSaved(id))
	assert.Equal(t, StateReadyForPayment, s.State())
	got, _ := s.SelectedAddressID()
	assert.Equal(t, id, got)
}

func TestSequencer_SelectAddressAndPayment(t *testing.T) {
	s := NewSequencer(LookupFailureAllow)
	assert.ErrorIs(t, s.SelectAddress(uuid.New()), ErrInvalidTransition)
	assert.ErrorIs(t, s.SelectPayment(account.PaymentModeCard), ErrInvalidTransition)

	s = readySequencer(t, cartWith(t, item(1)))
	other := uuid.New()
	require.NoError(t, s.SelectAddress(other))
	got, _ := s.SelectedAddressID()
	assert.Equal(t, other, got)

	require.NoError(t, s.SelectPayment(account.PaymentModeNetBanking))
	assert.Equal(t, account.PaymentModeNetBanking, s.PaymentMode())

	err := s.SelectPayment("barter")
	assert.ErrorIs(t, err, ErrPaymentModeRequired)
}

// ==================== Submission ====================

func TestSequencer_Submission(t *testing.T) {
	t.Run("confirm places the order", func(t *testing.T) {
		c := cartWith(t, item(299), item(349))
		s := readySequencer(t, c)

		sub, err := s.BeginSubmission(c)
		require.NoError(t, err)
		assert.Equal(t, account.PaymentModeCOD, sub.PaymentMode)
		assert.True(t, s.Pending())

		orderID := uuid.New()
		require.NoError(t, s.CompleteSubmission(orderID))
		assert.Equal(t, StateOrderPlaced, s.State())
		got, ok := s.OrderID()
		require.True(t, ok)
		assert.Equal(t, orderID, got)
	})

	t.Run("second confirm while pending is rejected", func(t *testing.T) {
		c := cartWith(t, item(299))
		s := readySequencer(t, c)
		_, err := s.BeginSubmission(c)
		require.NoError(t, err)

		_, err = s.BeginSubmission(c)
		assert.ErrorIs(t, err, ErrSubmissionInProgress)
		assert.ErrorIs(t, s.SelectPayment(account.PaymentModeUPI), ErrSubmissionInProgress)
		assert.ErrorIs(t, s.Reset(), ErrSubmissionInProgress)
		assert.ErrorIs(t, s.Checkout(context.Background(), c, Anonymous(), &stubAddresses{}), ErrSubmissionInProgress)
	})

	t.Run("order placed is unreachable with an empty cart", func(t *testing.T) {
		c := cartWith(t, item(299))
		s := readySequencer(t, c)
		c.Clear()

		_, err := s.BeginSubmission(c)
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.ErrorIs(t, s.CompleteSubmission(uuid.New()), ErrInvalidTransition)
		assert.NotEqual(t, StateOrderPlaced, s.State())
	})

	t.Run("payment mode is required", func(t *testing.T) {
		c := cartWith(t, item(1))
		userID := uuid.New()
		s := NewSequencer(LookupFailureAllow)
		require.NoError(t, s.Checkout(context.Background(), c, Authenticated(userID), &stubAddresses{list: []*account.Address{savedAddress(t, userID, true)}}))

		_, err := s.BeginSubmission(c)
		assert.ErrorIs(t, err, ErrPaymentModeRequired)
	})

	t.Run("confirm outside the payment step is refused", func(t *testing.T) {
		s := NewSequencer(LookupFailureAllow)
		_, err := s.BeginSubmission(cartWith(t, item(1)))
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("failure is terminal and checkout restarts from idle", func(t *testing.T) {
		c := cartWith(t, item(299))
		s := readySequencer(t, c)
		_, err := s.BeginSubmission(c)
		require.NoError(t, err)

		require.NoError(t, s.FailSubmission("order store unavailable"))
		assert.Equal(t, StateFailed, s.State())
		assert.Equal(t, "order store unavailable", s.Failure())

		require.NoError(t, s.Checkout(context.Background(), c, Anonymous(), &stubAddresses{}))
		assert.Equal(t, StateRequiresAuth, s.State())
		assert.Empty(t, s.Failure())
	})

	t.Run("stale pending submission expires", func(t *testing.T) {
		c := cartWith(t, item(299))
		s := readySequencer(t, c)
		_, err := s.BeginSubmission(c)
		require.NoError(t, err)

		assert.False(t, s.ExpireStalePending(time.Hour))
		s.pendingSince = time.Now().Add(-2 * time.Hour)
		assert.True(t, s.ExpireStalePending(time.Hour))
		assert.Equal(t, StateFailed, s.State())
		assert.False(t, s.Pending())
	})

	t.Run("late completion of an expired attempt is recorded", func(t *testing.T) {
		c := cartWith(t, item(299))
		s := readySequencer(t, c)
		_, err := s.BeginSubmission(c)
		require.NoError(t, err)
		s.pendingSince = time.Now().Add(-2 * time.Hour)
		require.True(t, s.ExpireStalePending(time.Hour))

		restored, err := RestoreSequencer(s.Snapshot())
		require.NoError(t, err)
		orderID := uuid.New()
		require.NoError(t, restored.CompleteSubmission(orderID))
		assert.Equal(t, StateOrderPlaced, restored.State())
		assert.Empty(t, restored.Failure())
		assert.ErrorIs(t, restored.CompleteSubmission(uuid.New()), ErrInvalidTransition)
	})

	t.Run("restart discards an expired attempt", func(t *testing.T) {
		c := cartWith(t, item(299))
		s := readySequencer(t, c)
		_, err := s.BeginSubmission(c)
		require.NoError(t, err)
		s.pendingSince = time.Now().Add(-2 * time.Hour)
		require.True(t, s.ExpireStalePending(time.Hour))

		require.NoError(t, s.Reset())
		assert.ErrorIs(t, s.CompleteSubmission(uuid.New()), ErrInvalidTransition)
		assert.ErrorIs(t, s.FailSubmission("late"), ErrInvalidTransition)
	})
}

// ==================== Persistence ====================

func TestSequencer_JSON(t *testing.T) {
	c := cartWith(t, item(299))
	s := readySequencer(t, c)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored Sequencer
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
}

func TestRestoreSequencer_RejectsImpossibleSnapshots(t *testing.T) {
	_, err := RestoreSequencer(Snapshot{State: "SHIPPED"})
	assert.Error(t, err)

	_, err = RestoreSequencer(Snapshot{State: StateOrderPlaced})
	assert.Error(t, err)

	_, err = RestoreSequencer(Snapshot{State: StateIdle, Pending: true})
	assert.Error(t, err)
}
