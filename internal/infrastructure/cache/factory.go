package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores bundles the session and idempotency stores the checkout flow runs on
type Stores struct {
	Sessions    checkout.SessionStore
	Idempotency shared.IdempotencyStore
	client      *redis.Client
}

// Close releases the idempotency store and the shared Redis client, if any
func (s *Stores) Close() error {
	var firstErr error
	if s.Idempotency != nil {
		firstErr = s.Idempotency.Close()
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// UsesRedis reports whether the stores are backed by Redis
func (s *Stores) UsesRedis() bool {
	return s.client != nil
}

// Ping checks the Redis connection. In-memory stores are always reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// StoreFactory builds Stores from configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	checkoutConfig        config.CheckoutConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

func NewStoreFactory(redisCfg config.RedisConfig, checkoutCfg config.CheckoutConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           redisCfg,
		checkoutConfig:        checkoutCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemoryStores builds process-local stores
func (f *StoreFactory) CreateInMemoryStores() *Stores {
	return &Stores{
		Sessions:    NewInMemorySessionStore(f.checkoutConfig.SessionTTL, f.policy()),
		Idempotency: NewInMemoryIdempotencyStore(),
	}
}

// CreateStores honors checkout.session_store. With "redis" it connects
// first and falls back to memory only when fallback is allowed.
func (f *StoreFactory) CreateStores(ctx context.Context) (*Stores, error) {
	if f.checkoutConfig.SessionStore != "redis" {
		f.logger.Info("using in-memory session and idempotency stores")
		return f.CreateInMemoryStores(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis session and idempotency stores", zap.String("addr", f.redisConfig.Addr()))
		return &Stores{
			Sessions:    NewRedisSessionStore(client, f.checkoutConfig.SessionTTL, f.policy()),
			Idempotency: NewRedisIdempotencyStore(client, ""),
			client:      client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for sessions but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Carts will not survive a restart or be shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStores(), nil
}

func (f *StoreFactory) policy() checkout.LookupFailurePolicy {
	p := checkout.LookupFailurePolicy(f.checkoutConfig.AddressLookupPolicy)
	if !p.IsValid() {
		return checkout.LookupFailureAllow
	}
	return p
}
