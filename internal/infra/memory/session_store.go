package memory

import (
	"context"
	"sync"
	"time"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	clock    func() time.Time
	sessions map[string]time.Time
}

func NewSessionStore() *SessionStore {
	return NewSessionStoreWithClock(time.Now)
}

// NewSessionStoreWithClock allows deterministic expiry in tests.
func NewSessionStoreWithClock(clock func() time.Time) *SessionStore {
	return &SessionStore{clock: clock, sessions: make(map[string]time.Time)}
}

func (s *SessionStore) Create(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = s.clock().Add(ttl)
	return nil
}

func (s *SessionStore) Exists(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if s.clock().After(expiry) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (s *SessionStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
