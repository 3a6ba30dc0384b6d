package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/checkout"
)

func sessionWithCart(t *testing.T) *checkout.Session {
	t.Helper()
	s := checkout.NewSession("", checkout.LookupFailureAllow)
	s.Cart.AddItem(cart.Item{ProductID: uuid.New(), Title: "Scientific Healing Affirmations", UnitPrice: decimal.NewFromInt(120)})
	return s
}

func TestInMemorySessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip does not alias", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour, checkout.LookupFailureAllow)
		s := sessionWithCart(t)
		require.NoError(t, store.Save(ctx, s))

		s.Cart.Clear()

		loaded, err := store.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, loaded.Cart.ItemCount())
		assert.Equal(t, checkout.StateIdle, loaded.Sequencer.State())
	})

	t.Run("unknown id", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour, checkout.LookupFailureAllow)
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, checkout.ErrSessionNotFound)
	})

	t.Run("idle sessions expire", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Minute, checkout.LookupFailureAllow)
		now := time.Now()
		store.now = func() time.Time { return now }

		s := sessionWithCart(t)
		require.NoError(t, store.Save(ctx, s))

		now = now.Add(2 * time.Minute)
		_, err := store.Get(ctx, s.ID)
		assert.ErrorIs(t, err, checkout.ErrSessionNotFound)

		require.NoError(t, store.Save(ctx, sessionWithCart(t)))
		assert.Equal(t, 1, store.Len(), "saving sweeps expired sessions")
	})

	t.Run("delete", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour, checkout.LookupFailureAllow)
		s := sessionWithCart(t)
		require.NoError(t, store.Save(ctx, s))
		require.NoError(t, store.Delete(ctx, s.ID))

		_, err := store.Get(ctx, s.ID)
		assert.ErrorIs(t, err, checkout.ErrSessionNotFound)
	})
}

func TestDecodeSession_RepairsMissingParts(t *testing.T) {
	s, err := decodeSession([]byte(`{"id":"tab-1"}`), checkout.LookupFailureFail)
	require.NoError(t, err)
	assert.True(t, s.Cart.IsEmpty())
	assert.Equal(t, checkout.LookupFailureFail, s.Sequencer.Policy())
}

// Redis-backed stores run only when a server is available, e.g.
// STORE_TEST_REDIS_ADDR=localhost:6379 go test ./internal/infrastructure/cache/...
func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("STORE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STORE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

func TestRedisSessionStore(t *testing.T) {
	client := newTestRedisClient(t)
	store := NewRedisSessionStore(client, time.Minute, checkout.LookupFailureAllow)
	ctx := context.Background()

	s := sessionWithCart(t)
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, s.Cart.Total().Equal(loaded.Cart.Total()))

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, checkout.ErrSessionNotFound)
}

func TestRedisIdempotencyStore(t *testing.T) {
	client := newTestRedisClient(t)
	store := NewRedisIdempotencyStore(client, "test:idempotency:")
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, isNew)

	require.NoError(t, store.Release(ctx, "k"))
	processed, err := store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.False(t, processed)
}
