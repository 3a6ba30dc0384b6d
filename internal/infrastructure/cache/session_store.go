package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/checkout"
)

const defaultSessionPrefix = "storefront:session:"

// encodeSession and decodeSession give both stores identical semantics: a
// loaded session never aliases the one that was saved.
func encodeSession(s *checkout.Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return data, nil
}

func decodeSession(data []byte, policy checkout.LookupFailurePolicy) (*checkout.Session, error) {
	var s checkout.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Cart == nil {
		s.Cart = cart.New()
	}
	if s.Sequencer == nil {
		s.Sequencer = checkout.NewSequencer(policy)
	}
	return &s, nil
}

type storedSession struct {
	data      []byte
	expiresAt time.Time
}

// InMemorySessionStore keeps serialized sessions in a map with an idle TTL
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]storedSession
	ttl      time.Duration
	policy   checkout.LookupFailurePolicy
	now      func() time.Time
}

// NewInMemorySessionStore creates a store. Every Save extends a session's life by ttl.
func NewInMemorySessionStore(ttl time.Duration, policy checkout.LookupFailurePolicy) *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]storedSession),
		ttl:      ttl,
		policy:   policy,
		now:      time.Now,
	}
}

func (s *InMemorySessionStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	s.mu.RLock()
	stored, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || (s.ttl > 0 && s.now().After(stored.expiresAt)) {
		return nil, checkout.ErrSessionNotFound
	}
	return decodeSession(stored.data, s.policy)
}

func (s *InMemorySessionStore) Save(ctx context.Context, session *checkout.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = storedSession{data: data, expiresAt: s.now().Add(s.ttl)}
	s.evictExpiredLocked()
	return nil
}

func (s *InMemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *InMemorySessionStore) evictExpiredLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, stored := range s.sessions {
		if now.After(stored.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

// Len returns the number of stored sessions
func (s *InMemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RedisSessionStore stores sessions as JSON with a sliding expiry
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	policy    checkout.LookupFailurePolicy
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration, policy checkout.LookupFailurePolicy) *RedisSessionStore {
	return &RedisSessionStore{
		client:    client,
		keyPrefix: defaultSessionPrefix,
		ttl:       ttl,
		policy:    policy,
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, checkout.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decodeSession(data, s.policy)
}

func (s *RedisSessionStore) Save(ctx context.Context, session *checkout.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

var (
	_ checkout.SessionStore = (*InMemorySessionStore)(nil)
	_ checkout.SessionStore = (*RedisSessionStore)(nil)
)
