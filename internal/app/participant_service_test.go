package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trivia-admin-service/internal/app"
	"trivia-admin-service/internal/domain"
	"trivia-admin-service/internal/infra/memory"
)

var testNow = time.Date(2025, 8, 26, 15, 0, 0, 0, time.UTC)

func TestListConsolidatesParts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewParticipantStore()
	service := newTestService(store, &captureBroadcaster{})

	t1 := testNow.Add(-48 * time.Hour)
	t2 := testNow.Add(-24 * time.Hour)
	seed(t, store, domain.Participant{
		ID: "u1", Name: "Alice", Email: "alice@example.com", JoinedOn: t1,
		QuizPart: "Math", QuizName: "Algebra", Score: 5, Total: 10,
		Attempts: []domain.Attempt{
			{QuizPart: "Math", QuizName: "Algebra", AttemptNumber: 1, Score: 5, Total: 10, Timestamp: t1},
			{QuizPart: "Science", QuizName: "Physics", AttemptNumber: 1, Score: 7, Total: 10, Timestamp: t2},
		},
	})

	rows, err := service.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != "u1---Math" || rows[1].ID != "u1---Science" {
		t.Fatalf("unexpected row ids %q, %q", rows[0].ID, rows[1].ID)
	}
	if rows[0].Score != 5 || rows[1].Score != 7 {
		t.Fatalf("unexpected scores %d, %d", rows[0].Score, rows[1].Score)
	}
	if rows[1].QuizName != "Physics" {
		t.Fatalf("expected latest quiz name, got %q", rows[1].QuizName)
	}
}

func TestListSynthesizesRowWithoutAttempts(t *testing.T) {
	store := memory.NewParticipantStore()
	service := newTestService(store, &captureBroadcaster{})

	seed(t, store, domain.Participant{ID: "u1", Name: "Alice", JoinedOn: testNow})

	rows, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].QuizPart != domain.PartNA || rows[0].ID != "u1---NA" {
		t.Fatalf("expected NA row, got %+v", rows[0])
	}
	if rows[0].Score != 0 || rows[0].AttemptNumber != 0 {
		t.Fatalf("expected empty-group defaults, got %+v", rows[0])
	}
	if rows[0].Status != domain.StatusReady {
		t.Fatalf("expected Ready, got %q", rows[0].Status)
	}
}

func TestListOrdersByJoinDateDescending(t *testing.T) {
	store := memory.NewParticipantStore()
	service := newTestService(store, &captureBroadcaster{})

	seed(t, store, domain.Participant{ID: "old", JoinedOn: testNow.Add(-72 * time.Hour)})
	seed(t, store, domain.Participant{ID: "new", JoinedOn: testNow.Add(-1 * time.Hour)})

	rows, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if rows[0].ID != "new---NA" || rows[1].ID != "old---NA" {
		t.Fatalf("expected newest participant first, got %q then %q", rows[0].ID, rows[1].ID)
	}
}

func TestStatusDependsOnDailyAttempts(t *testing.T) {
	store := memory.NewParticipantStore()
	service := newTestService(store, &captureBroadcaster{})

	today := testNow.Add(-2 * time.Hour)
	yesterday := testNow.Add(-26 * time.Hour)

	// Three attempts today in Math, one in Science; lastAttemptDate today.
	seed(t, store, domain.Participant{
		ID: "u1", JoinedOn: testNow, LastAttemptDate: &today,
		Attempts: []domain.Attempt{
			{QuizPart: "Math", Timestamp: today},
			{QuizPart: "Math", Timestamp: today},
			{QuizPart: "Math", Timestamp: today},
			{QuizPart: "Science", Timestamp: today},
		},
	})
	// Heavy history but nothing today.
	seed(t, store, domain.Participant{
		ID: "u2", JoinedOn: testNow.Add(-time.Hour), LastAttemptDate: &yesterday,
		Attempts: []domain.Attempt{
			{QuizPart: "Math", Timestamp: yesterday},
			{QuizPart: "Math", Timestamp: yesterday},
			{QuizPart: "Math", Timestamp: yesterday},
		},
	})

	rows, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	byID := map[string]domain.ParticipantRow{}
	for _, row := range rows {
		byID[row.ID] = row
	}
	if got := byID["u1---Math"]; got.Status != domain.StatusLimitReached || got.DailyAttempts != 3 {
		t.Fatalf("expected Math limit reached, got %+v", got)
	}
	if got := byID["u1---Science"]; got.Status != domain.StatusAvailable || got.DailyAttempts != 1 {
		t.Fatalf("expected Science available, got %+v", got)
	}
	if got := byID["u2---Math"]; got.Status != domain.StatusReady || got.DailyAttempts != 0 {
		t.Fatalf("expected Ready when last attempt was yesterday, got %+v", got)
	}
}

func TestDeleteWholeParticipant(t *testing.T) {
	ctx := context.Background()
	store := memory.NewParticipantStore()
	broadcast := &captureBroadcaster{}
	service := newTestService(store, broadcast)

	seed(t, store, domain.Participant{ID: "u1", Name: "Alice", Email: "alice@example.com", JoinedOn: testNow})

	outcome, err := service.Delete(ctx, domain.ParseDeleteTarget("u1"))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if outcome != app.OutcomeParticipantDeleted {
		t.Fatalf("expected whole-record outcome, got %v", outcome)
	}
	if _, err := store.FindByID(ctx, "u1"); !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected participant removed, got %v", err)
	}

	payload := broadcast.lastUserUpdate(t)
	if payload.Action != domain.ActionDeleted || payload.Email != "alice@example.com" {
		t.Fatalf("unexpected event payload %+v", payload)
	}
}

func TestDeletePartResetsSnapshotToFirstRemaining(t *testing.T) {
	ctx := context.Background()
	store := memory.NewParticipantStore()
	broadcast := &captureBroadcaster{}
	service := newTestService(store, broadcast)

	seed(t, store, domain.Participant{
		ID: "u1", JoinedOn: testNow, QuizPart: "Math", QuizName: "Algebra", Score: 5, Total: 10,
		Attempts: []domain.Attempt{
			{QuizPart: "Math", QuizName: "Algebra", AttemptNumber: 1, Score: 5, Total: 10, Timestamp: testNow},
			{QuizPart: "Science", QuizName: "Physics", AttemptNumber: 1, Score: 7, Total: 10, Timestamp: testNow},
		},
	})

	outcome, err := service.Delete(ctx, domain.ParseDeleteTarget("u1---Math"))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if outcome != app.OutcomePartRemoved {
		t.Fatalf("expected part-removed outcome, got %v", outcome)
	}

	p, err := store.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(p.Attempts) != 1 || p.Attempts[0].QuizPart != "Science" {
		t.Fatalf("expected only Science attempts, got %+v", p.Attempts)
	}
	if p.QuizPart != "Science" || p.Score != 7 || p.Total != 10 {
		t.Fatalf("expected snapshot reset to first remaining attempt, got %+v", p)
	}

	payload := broadcast.lastUserUpdate(t)
	if payload.Action != domain.ActionUpdated || payload.Part != "Math" {
		t.Fatalf("unexpected event payload %+v", payload)
	}
}

func TestDeleteLastPartRemovesParticipant(t *testing.T) {
	ctx := context.Background()
	store := memory.NewParticipantStore()
	broadcast := &captureBroadcaster{}
	service := newTestService(store, broadcast)

	seed(t, store, domain.Participant{
		ID: "u1", JoinedOn: testNow, QuizPart: "Math",
		Attempts: []domain.Attempt{{QuizPart: "Math", Timestamp: testNow}},
	})

	outcome, err := service.Delete(ctx, domain.ParseDeleteTarget("u1---Math"))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if outcome != app.OutcomeParticipantEmptied {
		t.Fatalf("expected emptied outcome, got %v", outcome)
	}
	if _, err := store.FindByID(ctx, "u1"); !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected participant removed, got %v", err)
	}
	if broadcast.lastUserUpdate(t).Action != domain.ActionDeleted {
		t.Fatalf("expected deleted event")
	}
}

func TestDeleteMissingParticipant(t *testing.T) {
	service := newTestService(memory.NewParticipantStore(), &captureBroadcaster{})
	_, err := service.Delete(context.Background(), domain.ParseDeleteTarget("ghost"))
	if !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestBulkDeletePartitionsTargets(t *testing.T) {
	ctx := context.Background()
	store := memory.NewParticipantStore()
	broadcast := &captureBroadcaster{}
	service := newTestService(store, broadcast)

	seed(t, store, domain.Participant{
		ID: "u1", JoinedOn: testNow, QuizPart: "Math",
		Attempts: []domain.Attempt{
			{QuizPart: "Math", Timestamp: testNow},
			{QuizPart: "Science", Score: 3, Total: 5, Timestamp: testNow},
		},
	})
	seed(t, store, domain.Participant{ID: "u2", JoinedOn: testNow})

	if err := service.BulkDelete(ctx, []string{"u1---Math", "u2"}); err != nil {
		t.Fatalf("bulk delete: %v", err)
	}

	if _, err := store.FindByID(ctx, "u2"); !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected u2 removed, got %v", err)
	}
	p, err := store.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("find u1: %v", err)
	}
	if len(p.Attempts) != 1 || p.Attempts[0].QuizPart != "Science" {
		t.Fatalf("expected only Science attempts left, got %+v", p.Attempts)
	}
	if p.QuizPart != "Science" || p.Score != 3 {
		t.Fatalf("expected snapshot reset, got %+v", p)
	}

	payload := broadcast.lastUserUpdate(t)
	if payload.Action != domain.ActionBulkDeleted || payload.Count != 2 {
		t.Fatalf("expected one bulk-deleted event with requested count, got %+v", payload)
	}
}

func TestBulkDeleteSkipsMissingParticipants(t *testing.T) {
	service := newTestService(memory.NewParticipantStore(), &captureBroadcaster{})
	if err := service.BulkDelete(context.Background(), []string{"ghost---Math"}); err != nil {
		t.Fatalf("expected missing participants skipped, got %v", err)
	}
}

func newTestService(store app.ParticipantStore, broadcast app.Broadcaster) *app.ParticipantService {
	return app.NewParticipantServiceWithClock(store, broadcast, func() time.Time { return testNow })
}

func seed(t *testing.T, store app.ParticipantStore, p domain.Participant) {
	t.Helper()
	if err := store.Update(context.Background(), p); err != nil {
		t.Fatalf("seed participant %s: %v", p.ID, err)
	}
}

type captureBroadcaster struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *captureBroadcaster) Publish(event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBroadcaster) lastUserUpdate(t *testing.T) domain.UserUpdatePayload {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].Name == domain.EventUserUpdate {
			payload, ok := b.events[i].Payload.(domain.UserUpdatePayload)
			if !ok {
				t.Fatalf("unexpected payload type %T", b.events[i].Payload)
			}
			return payload
		}
	}
	t.Fatalf("no user:update event published")
	return domain.UserUpdatePayload{}
}
