package app_test

import (
	"context"
	"errors"
	"testing"

	"trivia-admin-service/internal/app"
	"trivia-admin-service/internal/domain"
	"trivia-admin-service/internal/infra/memory"
)

func TestQuizSavePublishesUpdate(t *testing.T) {
	ctx := context.Background()
	broadcast := &captureBroadcaster{}
	service := app.NewQuizService(memory.NewQuizStore(nil), broadcast)

	quiz := domain.Quiz{ID: "quiz-1", Name: "General Knowledge", Rounds: []domain.Round{
		{Name: "Round 1", Sets: []domain.QuestionSet{{Name: "Warmup", Questions: []domain.Question{
			{ID: "q1", Prompt: "What is 2 + 2?", Options: []domain.Option{
				{ID: "o1", Text: "3"},
				{ID: "o2", Text: "4", Correct: true},
			}, Points: 1},
		}}}},
	}}
	if err := service.Save(ctx, quiz); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := service.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "General Knowledge" || len(got.Rounds) != 1 {
		t.Fatalf("unexpected quiz %+v", got)
	}

	payload := broadcast.lastUserUpdate(t)
	if payload.Action != domain.ActionQuizUpdated || payload.QuizID != "quiz-1" {
		t.Fatalf("unexpected event %+v", payload)
	}
}

func TestQuizDeletePublishesAndFailsOnMissing(t *testing.T) {
	ctx := context.Background()
	broadcast := &captureBroadcaster{}
	service := app.NewQuizService(memory.NewQuizStore(map[string]domain.Quiz{
		"quiz-1": {ID: "quiz-1"},
	}), broadcast)

	if err := service.Delete(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if payload := broadcast.lastUserUpdate(t); payload.Action != domain.ActionQuizDeleted {
		t.Fatalf("unexpected event %+v", payload)
	}

	if err := service.Delete(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
