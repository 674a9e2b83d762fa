package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"docverify/internal/verification"
	"docverify/pkg/platform/sentinel"
)

const keyPrefix = "verification:"

// RedisStore keeps records as JSON values with a TTL, so every replica can
// serve GET /verifications/{id}.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, rec *verification.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode verification: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+rec.ID.String(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save verification %s: %w", rec.ID, err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id uuid.UUID) (*verification.Record, error) {
	data, err := s.client.Get(ctx, keyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load verification %s: %w", id, err)
	}
	var rec verification.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode verification %s: %w", id, err)
	}
	return &rec, nil
}
