package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists tokens in Redis, for deployments where several client
// processes share one session (kiosk terminals behind a single account).
type RedisStore struct {
	rdb *redis.Client
	ctx context.Context
}

func NewRedisStore(rdb *redis.Client, ctx context.Context) *RedisStore {
	return &RedisStore{rdb: rdb, ctx: ctx}
}

func redisKey(role Role) string {
	return "shopfront:token:" + string(role)
}

func (s *RedisStore) Token(role Role) (string, error) {
	token, err := s.rdb.Get(s.ctx, redisKey(role)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

func (s *RedisStore) Save(role Role, token string) error {
	if err := s.rdb.Set(s.ctx, redisKey(role), token, 0).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(role Role) error {
	if err := s.rdb.Del(s.ctx, redisKey(role)).Err(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
