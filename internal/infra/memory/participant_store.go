package memory

import (
	"context"
	"sync"

	"trivia-admin-service/internal/domain"
)

// ParticipantStore is an in-memory implementation of app.ParticipantStore.
type ParticipantStore struct {
	mu           sync.RWMutex
	participants map[string]domain.Participant
}

func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{participants: make(map[string]domain.Participant)}
}

func (s *ParticipantStore) FindAll(_ context.Context) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p)
	}
	return out, nil
}

func (s *ParticipantStore) FindByID(_ context.Context, id string) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return p, nil
}

func (s *ParticipantStore) Update(_ context.Context, p domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = p
	return nil
}

func (s *ParticipantStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants, id)
	return nil
}

func (s *ParticipantStore) DeleteMany(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.participants, id)
	}
	return nil
}
