package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nexsupply/nexi/internal/logging"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates conversation access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.ConversationStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active per-conversation locks

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given conversation store.
func NewManager(store ports.ConversationStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves an existing conversation from the store.
func (m *Manager) Load(ctx context.Context, id string) (*domain.ConversationState, error) {
	var state *domain.ConversationState
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, id)
		return err
	})
	return state, err
}

// LoadOrStart loads a conversation, or creates it with start when it does
// not exist yet. The new state is persisted before returning so concurrent
// callers observe the same conversation.
func (m *Manager) LoadOrStart(ctx context.Context, id string, start func() (*domain.ConversationState, error)) (*domain.ConversationState, error) {
	var state *domain.ConversationState
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConversationNotFound) {
			return fmt.Errorf("failed to check conversation existence: %w", err)
		}

		state, err = start()
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, id, state); err != nil {
			return fmt.Errorf("failed to initialize conversation: %w", err)
		}
		return nil
	})
	return state, err
}

// Update runs one read-modify-write cycle: it loads the conversation,
// applies fn and saves what fn returns. When fn fails nothing is saved and
// the loaded state is returned along with the error.
func (m *Manager) Update(ctx context.Context, id string, fn func(*domain.ConversationState) (*domain.ConversationState, error)) (*domain.ConversationState, error) {
	var state *domain.ConversationState
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		state = current

		next, err := fn(current)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, id, next); err != nil {
			return fmt.Errorf("failed to save conversation: %w", err)
		}
		state = next
		return nil
	})
	return state, err
}

// Save persists the conversation state.
func (m *Manager) Save(ctx context.Context, id string, state *domain.ConversationState) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Save(ctx, id, state)
	})
}

// Delete removes the conversation from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying conversation store.
func (m *Manager) Store() ports.ConversationStore {
	return m.store
}

// WithLock executes fn while holding the lock for the conversation.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"conversation_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
