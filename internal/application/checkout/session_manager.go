package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/checkout"
	"go.uber.org/zap"
)

// SessionManager loads, mutates and saves checkout sessions. Mutations of one
// session are serialized within this process; cross-process single-flight for
// submission is handled by the idempotency store.
type SessionManager struct {
	store          checkout.SessionStore
	policy         checkout.LookupFailurePolicy
	pendingTimeout time.Duration
	locks          *keyedMutex
	logger         *zap.Logger

	liveMu sync.Mutex
	live   map[string]struct{}
}

func NewSessionManager(store checkout.SessionStore, policy checkout.LookupFailurePolicy, pendingTimeout time.Duration, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		store:          store,
		policy:         policy,
		pendingTimeout: pendingTimeout,
		locks:          newKeyedMutex(),
		logger:         logger,
		live:           make(map[string]struct{}),
	}
}

// PendingTimeout is how long a submission may stay pending before it is failed
func (m *SessionManager) PendingTimeout() time.Duration {
	return m.pendingTimeout
}

// Load returns the stored session, or a fresh unsaved one when id is unknown
func (m *SessionManager) Load(ctx context.Context, id string) (*checkout.Session, error) {
	unlock := m.locks.Lock(id)
	defer unlock()
	sess, _, err := m.load(ctx, id)
	return sess, err
}

// Update runs fn on the session and saves it when fn succeeds. A submission
// left pending past the timeout is failed first.
func (m *SessionManager) Update(ctx context.Context, id string, fn func(*checkout.Session) error) (*checkout.Session, error) {
	return m.update(ctx, id, true, fn)
}

// markLive records that this process is running the session's submission.
// A live submission is never expired here, however long it takes.
func (m *SessionManager) markLive(id string) {
	m.liveMu.Lock()
	m.live[id] = struct{}{}
	m.liveMu.Unlock()
}

func (m *SessionManager) clearLive(id string) {
	m.liveMu.Lock()
	delete(m.live, id)
	m.liveMu.Unlock()
}

func (m *SessionManager) isLive(id string) bool {
	m.liveMu.Lock()
	defer m.liveMu.Unlock()
	_, ok := m.live[id]
	return ok
}

// finishSubmission updates without expiring a pending submission, since the
// caller is the one completing it.
func (m *SessionManager) finishSubmission(ctx context.Context, id string, fn func(*checkout.Session) error) (*checkout.Session, error) {
	return m.update(ctx, id, false, fn)
}

func (m *SessionManager) update(ctx context.Context, id string, expire bool, fn func(*checkout.Session) error) (*checkout.Session, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	sess, expired, err := m.loadWithExpiry(ctx, id, expire)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		if expired {
			_ = m.save(ctx, sess)
		}
		return nil, err
	}
	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *SessionManager) load(ctx context.Context, id string) (*checkout.Session, bool, error) {
	return m.loadWithExpiry(ctx, id, true)
}

func (m *SessionManager) loadWithExpiry(ctx context.Context, id string, expire bool) (*checkout.Session, bool, error) {
	sess, err := m.store.Get(ctx, id)
	if errors.Is(err, checkout.ErrSessionNotFound) {
		return checkout.NewSession(id, m.policy), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	expired := expire && !m.isLive(id) && sess.Sequencer.ExpireStalePending(m.pendingTimeout)
	if expired {
		m.logger.Warn("Expired stale order submission", zap.String("session_id", id))
	}
	return sess, expired, nil
}

func (m *SessionManager) save(ctx context.Context, sess *checkout.Session) error {
	sess.Touch()
	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.Error("Failed to save checkout session", zap.String("session_id", sess.ID), zap.Error(err))
		return err
	}
	return nil
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds it
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns its unlock function
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
