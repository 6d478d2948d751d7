package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trivia-admin-service/internal/domain"
)

const participantHashKey = "participants"

// ParticipantStore keeps participant records as JSON documents in a single
// Redis hash: HSET participants {id} {json}.
type ParticipantStore struct {
	client *redis.Client
}

func NewParticipantStore(client *redis.Client) *ParticipantStore {
	return &ParticipantStore{client: client}
}

func (s *ParticipantStore) FindAll(ctx context.Context) ([]domain.Participant, error) {
	docs, err := s.client.HGetAll(ctx, participantHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("find participants: %w", err)
	}
	out := make([]domain.Participant, 0, len(docs))
	for id, raw := range docs {
		var p domain.Participant
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("unmarshal participant %s: %w", id, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *ParticipantStore) FindByID(ctx context.Context, id string) (domain.Participant, error) {
	raw, err := s.client.HGet(ctx, participantHashKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("find participant: %w", err)
	}
	var p domain.Participant
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.Participant{}, fmt.Errorf("unmarshal participant %s: %w", id, err)
	}
	return p, nil
}

func (s *ParticipantStore) Update(ctx context.Context, p domain.Participant) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal participant %s: %w", p.ID, err)
	}
	if err := s.client.HSet(ctx, participantHashKey, p.ID, raw).Err(); err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return nil
}

func (s *ParticipantStore) DeleteByID(ctx context.Context, id string) error {
	if err := s.client.HDel(ctx, participantHashKey, id).Err(); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}

func (s *ParticipantStore) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, participantHashKey, ids...).Err(); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	return nil
}
