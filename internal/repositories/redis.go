package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces session keys.
const RedisKeyPrefix = "resonate:session:"

const maxSlotRetries = 10

// RedisSessionRepository implements session.Store with one JSON value per session. Keys have no TTL.
type RedisSessionRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisSessionRepository creates a Redis-backed session store.
func NewRedisSessionRepository(client redis.UniversalClient) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, prefix: RedisKeyPrefix}
}

func (r *RedisSessionRepository) key(code string) string {
	return r.prefix + code
}

// Create stores s only when no session with the same code exists (SET NX).
func (r *RedisSessionRepository) Create(ctx context.Context, s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(s.Code), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrSessionExists, s.Code)
	}
	return nil
}

func (r *RedisSessionRepository) Get(ctx context.Context, code string) (*models.Session, error) {
	return r.get(ctx, r.client, code)
}

// getter is satisfied by both the client and a WATCH transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisSessionRepository) get(ctx context.Context, c getter, code string) (*models.Session, error) {
	val, err := c.Get(ctx, r.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Update overwrites an existing session (SET XX) and sets its UpdatedAt.
func (r *RedisSessionRepository) Update(ctx context.Context, s *models.Session) error {
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := r.client.SetXX(ctx, r.key(s.Code), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, s.Code)
	}
	return nil
}

// SaveSlot replaces one slot inside a WATCH/MULTI transaction, retrying when another writer got there first.
func (r *RedisSessionRepository) SaveSlot(ctx context.Context, code string, user models.UserSlot, data *models.UserData) error {
	key := r.key(code)

	txf := func(tx *redis.Tx) error {
		s, err := r.get(ctx, tx, code)
		if err != nil {
			return err
		}
		if err := s.SetSlot(user, data); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidUser, err)
		}

		value, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, 0)
			return nil
		})
		return err
	}

	for range maxSlotRetries {
		err := r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}

	return fmt.Errorf("failed to save session slot: too much contention on %s", code)
}

func (r *RedisSessionRepository) Delete(ctx context.Context, code string) error {
	if err := r.client.Del(ctx, r.key(code)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
