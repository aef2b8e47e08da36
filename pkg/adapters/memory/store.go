package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/assist/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Session
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Session),
	}
}

// Save stores a copy of the session.
func (s *Store) Save(ctx context.Context, profile string, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[profile] = session.Clone()
	return nil
}

// Load returns a copy so callers can't mutate the stored session through the pointer.
func (s *Store) Load(ctx context.Context, profile string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[profile]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	ret := sess.Clone()
	return &ret, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, profile)
	return nil
}

// List returns the profiles holding a session, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := make([]string, 0, len(s.data))
	for p := range s.data {
		profiles = append(profiles, p)
	}
	sort.Strings(profiles)
	return profiles, nil
}
