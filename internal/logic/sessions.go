package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisSessionStore struct {
	redis RedisClient
}

// NewSessionStore reads sessions written by the login flow to Redis.
func NewSessionStore(redis RedisClient) SessionStore {
	return &redisSessionStore{redis: redis}
}

// Username returns ErrNotFound for unknown or anonymous sessions.
func (s *redisSessionStore) Username(ctx context.Context, sessionID string) (string, error) {
	username, err := s.redis.HGet(ctx, "session:"+sessionID, "username").Result()
	if errors.Is(err, redis.Nil) || (err == nil && username == "") {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return username, nil
}
