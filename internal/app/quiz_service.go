package app

import (
	"context"

	"trivia-admin-service/internal/domain"
)

// QuizStore abstracts the document store holding quiz content.
type QuizStore interface {
	List(ctx context.Context) ([]domain.Quiz, error)
	Get(ctx context.Context, id string) (domain.Quiz, error)
	Save(ctx context.Context, quiz domain.Quiz) error
	Delete(ctx context.Context, id string) error
}

// QuizService persists quiz documents as-is and notifies observers of every
// change. No field-level validation happens here.
type QuizService struct {
	store     QuizStore
	broadcast Broadcaster
}

func NewQuizService(store QuizStore, broadcast Broadcaster) *QuizService {
	return &QuizService{store: store, broadcast: broadcast}
}

func (s *QuizService) List(ctx context.Context) ([]domain.Quiz, error) {
	return s.store.List(ctx)
}

func (s *QuizService) Get(ctx context.Context, id string) (domain.Quiz, error) {
	return s.store.Get(ctx, id)
}

// Save upserts the quiz document and announces the change.
func (s *QuizService) Save(ctx context.Context, quiz domain.Quiz) error {
	if err := s.store.Save(ctx, quiz); err != nil {
		return err
	}
	s.broadcast.Publish(domain.Event{Name: domain.EventUserUpdate, Payload: domain.UserUpdatePayload{
		Action: domain.ActionQuizUpdated,
		QuizID: quiz.ID,
	}})
	return nil
}

func (s *QuizService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.broadcast.Publish(domain.Event{Name: domain.EventUserUpdate, Payload: domain.UserUpdatePayload{
		Action: domain.ActionQuizDeleted,
		QuizID: id,
	}})
	return nil
}
