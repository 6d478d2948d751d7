package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"trivia-admin-service/internal/domain"
)

// ParticipantStore abstracts the document store holding participant records.
type ParticipantStore interface {
	FindAll(ctx context.Context) ([]domain.Participant, error)
	FindByID(ctx context.Context, id string) (domain.Participant, error)
	Update(ctx context.Context, p domain.Participant) error
	DeleteByID(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
}

// DeleteOutcome reports which shape a single-target delete took.
type DeleteOutcome int

const (
	// OutcomeParticipantDeleted means the whole record was removed by id.
	OutcomeParticipantDeleted DeleteOutcome = iota
	// OutcomePartRemoved means one part's attempts were dropped and the
	// record was kept.
	OutcomePartRemoved
	// OutcomeParticipantEmptied means the last part was dropped and nothing
	// remained, so the record was removed.
	OutcomeParticipantEmptied
)

const dailyAttemptLimit = 3

// ParticipantService implements the admin list and delete use cases over
// participant records.
type ParticipantService struct {
	store     ParticipantStore
	broadcast Broadcaster
	now       func() time.Time
}

func NewParticipantService(store ParticipantStore, broadcast Broadcaster) *ParticipantService {
	return NewParticipantServiceWithClock(store, broadcast, time.Now)
}

// NewParticipantServiceWithClock allows a deterministic "today" in tests.
func NewParticipantServiceWithClock(store ParticipantStore, broadcast Broadcaster, now func() time.Time) *ParticipantService {
	return &ParticipantService{store: store, broadcast: broadcast, now: now}
}

// List returns one display row per (participant, part). Participants are
// ordered by join date descending; each participant's parts appear in
// first-seen attempt order. This is a pure projection, nothing is mutated.
func (s *ParticipantService) List(ctx context.Context) ([]domain.ParticipantRow, error) {
	participants, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].JoinedOn.After(participants[j].JoinedOn)
	})

	now := s.now()
	rows := make([]domain.ParticipantRow, 0, len(participants))
	for _, p := range participants {
		rows = append(rows, consolidate(p, now)...)
	}
	return rows, nil
}

// consolidate flattens one participant into per-part display rows.
func consolidate(p domain.Participant, now time.Time) []domain.ParticipantRow {
	order := make([]string, 0, 4)
	groups := make(map[string][]domain.Attempt)
	for _, a := range p.Attempts {
		part := a.Part()
		if _, ok := groups[part]; !ok {
			order = append(order, part)
		}
		groups[part] = append(groups[part], a)
	}
	if len(order) == 0 {
		// Attempt-less participants still get a single empty row under their
		// current part.
		part := p.QuizPart
		if part == "" {
			part = domain.PartNA
		}
		order = append(order, part)
	}

	rows := make([]domain.ParticipantRow, 0, len(order))
	for _, part := range order {
		attempts := groups[part]

		daily := 0
		for _, a := range attempts {
			if sameDay(a.Timestamp, now) {
				daily++
			}
		}

		// Status keys off the participant-wide last attempt date, not a
		// per-part one. Kept that way on purpose.
		status := domain.StatusReady
		if p.LastAttemptDate != nil && sameDay(*p.LastAttemptDate, now) {
			if daily >= dailyAttemptLimit {
				status = domain.StatusLimitReached
			} else {
				status = domain.StatusAvailable
			}
		}

		row := domain.ParticipantRow{
			ID:              domain.RowID(p.ID, part),
			Name:            p.Name,
			Email:           p.Email,
			JoinedOn:        p.JoinedOn,
			QuizPart:        part,
			DailyAttempts:   daily,
			LastAttemptDate: p.LastAttemptDate,
			Status:          status,
		}
		if len(attempts) > 0 {
			latest := attempts[len(attempts)-1]
			row.QuizName = latest.QuizName
			row.Score = latest.Score
			row.Total = latest.Total
			row.AttemptNumber = latest.AttemptNumber
			row.TimeTaken = latest.TimeTaken
			row.RoundTimings = latest.RoundTimings
		}
		rows = append(rows, row)
	}
	return rows
}

func sameDay(t, ref time.Time) bool {
	ty, tm, td := t.Date()
	ry, rm, rd := ref.Date()
	return ty == ry && tm == rm && td == rd
}

// Delete applies a single delete target and keeps the participant's
// denormalized snapshot consistent afterward.
func (s *ParticipantService) Delete(ctx context.Context, target domain.DeleteTarget) (DeleteOutcome, error) {
	p, err := s.store.FindByID(ctx, target.ParticipantID)
	if err != nil {
		return 0, err
	}

	if target.IsWholeParticipant() {
		if err := s.store.DeleteByID(ctx, p.ID); err != nil {
			return 0, err
		}
		s.publishDeleted(p)
		return OutcomeParticipantDeleted, nil
	}

	removePart(&p, target.Part)

	if len(p.Attempts) == 0 && p.QuizPart == "" {
		if err := s.store.DeleteByID(ctx, p.ID); err != nil {
			return 0, err
		}
		s.publishDeleted(p)
		return OutcomeParticipantEmptied, nil
	}

	if err := s.store.Update(ctx, p); err != nil {
		return 0, err
	}
	s.broadcast.Publish(domain.Event{Name: domain.EventUserUpdate, Payload: domain.UserUpdatePayload{
		Action: domain.ActionUpdated,
		ID:     p.ID,
		Part:   target.Part,
	}})
	return OutcomePartRemoved, nil
}

// BulkDelete partitions the requested ids into whole-participant and
// part-specific targets, removes whole records in one store call, then
// consolidates each remaining participant independently. Each participant's
// mutation is committed on its own; a failure partway through leaves earlier
// changes in place.
func (s *ParticipantService) BulkDelete(ctx context.Context, ids []string) error {
	whole := make([]string, 0, len(ids))
	wholeSet := make(map[string]struct{})
	partTargets := make(map[string][]string)
	partOrder := make([]string, 0, len(ids))

	for _, raw := range ids {
		target := domain.ParseDeleteTarget(raw)
		if target.IsWholeParticipant() {
			if _, ok := wholeSet[target.ParticipantID]; !ok {
				wholeSet[target.ParticipantID] = struct{}{}
				whole = append(whole, target.ParticipantID)
			}
			continue
		}
		if _, ok := partTargets[target.ParticipantID]; !ok {
			partOrder = append(partOrder, target.ParticipantID)
		}
		partTargets[target.ParticipantID] = append(partTargets[target.ParticipantID], target.Part)
	}

	if len(whole) > 0 {
		if err := s.store.DeleteMany(ctx, whole); err != nil {
			return err
		}
	}

	for _, id := range partOrder {
		if _, gone := wholeSet[id]; gone {
			continue
		}
		p, err := s.store.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrParticipantNotFound) {
				continue
			}
			return err
		}
		for _, part := range partTargets[id] {
			removePart(&p, part)
		}
		if len(p.Attempts) == 0 && p.QuizPart == "" {
			if err := s.store.DeleteByID(ctx, p.ID); err != nil {
				return err
			}
			continue
		}
		if err := s.store.Update(ctx, p); err != nil {
			return err
		}
	}

	// One event for the whole batch, reporting the requested id count.
	s.broadcast.Publish(domain.Event{Name: domain.EventUserUpdate, Payload: domain.UserUpdatePayload{
		Action: domain.ActionBulkDeleted,
		Count:  len(ids),
	}})
	return nil
}

func (s *ParticipantService) publishDeleted(p domain.Participant) {
	s.broadcast.Publish(domain.Event{Name: domain.EventUserUpdate, Payload: domain.UserUpdatePayload{
		Action: domain.ActionDeleted,
		ID:     p.ID,
		Email:  p.Email,
		Name:   p.Name,
	}})
}

// removePart drops every attempt belonging to the given part. When the
// participant's denormalized snapshot pointed at that part it is recomputed
// from the first remaining attempt, or cleared when none remain.
func removePart(p *domain.Participant, part string) {
	kept := make([]domain.Attempt, 0, len(p.Attempts))
	for _, a := range p.Attempts {
		if a.Part() != part {
			kept = append(kept, a)
		}
	}
	p.Attempts = kept

	if p.QuizPart != part {
		return
	}
	if len(kept) > 0 {
		first := kept[0]
		p.QuizPart = first.QuizPart
		p.QuizName = first.QuizName
		p.Score = first.Score
		p.Total = first.Total
		return
	}
	p.QuizPart = ""
	p.QuizName = ""
	p.Score = 0
	p.Total = 0
}
