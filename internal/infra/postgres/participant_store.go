package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-admin-service/internal/domain"
)

// ParticipantStore keeps participant records as JSONB documents in the
// participants table.
type ParticipantStore struct {
	pool *pgxpool.Pool
}

func NewParticipantStore(pool *pgxpool.Pool) *ParticipantStore {
	return &ParticipantStore{pool: pool}
}

func (s *ParticipantStore) FindAll(ctx context.Context) ([]domain.Participant, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM participants`)
	if err != nil {
		return nil, fmt.Errorf("find participants: %w", err)
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		var p domain.Participant
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("unmarshal participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ParticipantStore) FindByID(ctx context.Context, id string) (domain.Participant, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM participants WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("find participant: %w", err)
	}
	var p domain.Participant
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Participant{}, fmt.Errorf("unmarshal participant %s: %w", id, err)
	}
	return p, nil
}

func (s *ParticipantStore) Update(ctx context.Context, p domain.Participant) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal participant %s: %w", p.ID, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO participants (id, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, p.ID, raw)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return nil
}

func (s *ParticipantStore) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM participants WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}

func (s *ParticipantStore) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM participants WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	return nil
}
