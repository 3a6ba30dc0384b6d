package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that have already been claimed.
// Order submission claims the client's Idempotency-Key here before writing.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl.
	// Returns true if the key was newly claimed, false if it was already held.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key is currently claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claim so the key can be retried
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}

// DefaultIdempotencyTTL is how long a submission key stays claimed
const DefaultIdempotencyTTL = 24 * time.Hour
