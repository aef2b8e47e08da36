package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/assist/internal/logging"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/ports"
)

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "default"

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// Locks are reference counted and dropped once no caller holds them.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

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

// WithLockTTL bounds how long a distributed lock survives a crashed holder.
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

// NewManager creates a Manager over the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (m *Manager) acquire(profile string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[profile]
	if !exists {
		entry = &lockEntry{}
		m.locks[profile] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(profile string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[profile]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, profile)
	}
}

// Get returns the session of a profile. A missing session is the zero Session, not an error.
func (m *Manager) Get(ctx context.Context, profile string) (domain.Session, error) {
	var out domain.Session
	err := m.WithLock(ctx, profile, func(ctx context.Context) error {
		sess, err := m.store.Load(ctx, profile)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		out = *sess
		return nil
	})
	return out, err
}

// Set merges patch into the stored session under the profile lock.
// Concurrent writers serialize; the last write wins field by field.
func (m *Manager) Set(ctx context.Context, profile string, patch domain.Session) (domain.Session, error) {
	var out domain.Session
	err := m.WithLock(ctx, profile, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, profile)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			current = &domain.Session{}
		case err != nil:
			return fmt.Errorf("failed to load session: %w", err)
		}

		out = current.Merge(patch)
		if err := m.store.Save(ctx, profile, &out); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		m.logger.Debug("Session updated", "profile", profile, "authenticated", out.Authenticated())
		return nil
	})
	return out, err
}

// Clear removes the session of a profile.
func (m *Manager) Clear(ctx context.Context, profile string) error {
	return m.WithLock(ctx, profile, func(ctx context.Context) error {
		if err := m.store.Delete(ctx, profile); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		m.logger.Debug("Session cleared", "profile", profile)
		return nil
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Profile returns the session context bound to a profile.
func (m *Manager) Profile(name string) *Profile {
	if name == "" {
		name = DefaultProfile
	}
	return &Profile{name: name, m: m}
}

// WithLock executes fn while holding the lock for the profile.
func (m *Manager) WithLock(ctx context.Context, profile string, fn func(context.Context) error) error {
	entry := m.acquire(profile)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(profile)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, profile, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Unlock even if ctx was cancelled meanwhile.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"profile", profile,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Profile is the session context of one profile. It implements ports.SessionContext.
type Profile struct {
	name string
	m    *Manager
}

var _ ports.SessionContext = (*Profile)(nil)

// Name returns the profile name.
func (p *Profile) Name() string { return p.name }

// GetSession re-reads the store; nothing is cached.
func (p *Profile) GetSession(ctx context.Context) (domain.Session, error) {
	return p.m.Get(ctx, p.name)
}

// SetSession merges patch into the stored session.
func (p *Profile) SetSession(ctx context.Context, patch domain.Session) (domain.Session, error) {
	return p.m.Set(ctx, p.name, patch)
}

// ClearSession signs the profile out.
func (p *Profile) ClearSession(ctx context.Context) error {
	return p.m.Clear(ctx, p.name)
}
