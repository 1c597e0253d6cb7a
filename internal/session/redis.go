package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
)

const keyPrefix = "pointage:session:"

// RedisStore keeps sessions in redis with a native TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Establish(ctx context.Context, p policy.Principal) (string, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Current(ctx context.Context, token string) (*policy.Principal, error) {
	if token == "" {
		return nil, nil
	}
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p policy.Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		// A corrupt session reads as no session.
		return nil, nil
	}
	return &p, nil
}

func (s *RedisStore) Terminate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, keyPrefix+token).Err()
}
