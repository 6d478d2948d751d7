package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-admin-service/internal/app"
	"trivia-admin-service/internal/domain"
)

const quizHashKey = "quizzes"

// QuizStore keeps quiz documents as JSON in a single Redis hash. It serves
// as the primary store when no postgres backend is configured.
type QuizStore struct {
	client *redis.Client
}

func NewQuizStore(client *redis.Client) *QuizStore {
	return &QuizStore{client: client}
}

func (s *QuizStore) List(ctx context.Context) ([]domain.Quiz, error) {
	docs, err := s.client.HGetAll(ctx, quizHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.Quiz, 0, len(docs))
	for id, raw := range docs {
		var quiz domain.Quiz
		if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz %s: %w", id, err)
		}
		out = append(out, quiz)
	}
	return out, nil
}

func (s *QuizStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	raw, err := s.client.HGet(ctx, quizHashKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz %s: %w", id, err)
	}
	return quiz, nil
}

func (s *QuizStore) Save(ctx context.Context, quiz domain.Quiz) error {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz %s: %w", quiz.ID, err)
	}
	if err := s.client.HSet(ctx, quizHashKey, quiz.ID, raw).Err(); err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.HDel(ctx, quizHashKey, id).Result()
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if removed == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// CachedQuizStore is a read-through cache in front of a backing quiz store:
// GET quiz:{id}:doc holds the JSON document with a jittered TTL. Writes go
// to the backing store and drop the cached copy.
type CachedQuizStore struct {
	client  *redis.Client
	backing app.QuizStore
	ttl     time.Duration
	sf      singleflight.Group
	rnd     *rand.Rand
}

func NewCachedQuizStore(client *redis.Client, backing app.QuizStore, ttl time.Duration) *CachedQuizStore {
	return &CachedQuizStore{
		client:  client,
		backing: backing,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// List always hits the backing store; the admin list view is rare enough
// that caching it buys nothing.
func (s *CachedQuizStore) List(ctx context.Context) ([]domain.Quiz, error) {
	return s.backing.List(ctx)
}

func (s *CachedQuizStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	key := s.docKey(id)

	if quiz, ok := s.cached(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := s.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := s.cached(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := s.backing.Get(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		if raw, err := json.Marshal(quiz); err == nil {
			_ = s.client.Set(ctx, key, raw, s.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (s *CachedQuizStore) Save(ctx context.Context, quiz domain.Quiz) error {
	if err := s.backing.Save(ctx, quiz); err != nil {
		return err
	}
	_ = s.client.Del(ctx, s.docKey(quiz.ID)).Err()
	return nil
}

func (s *CachedQuizStore) Delete(ctx context.Context, id string) error {
	if err := s.backing.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.client.Del(ctx, s.docKey(id)).Err()
	return nil
}

func (s *CachedQuizStore) cached(ctx context.Context, key string) (domain.Quiz, bool) {
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (s *CachedQuizStore) docKey(id string) string {
	return "quiz:" + id + ":doc"
}

func (s *CachedQuizStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
