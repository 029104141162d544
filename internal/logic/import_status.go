package logic

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hashblen/stardb-api/internal/models"
)

type redisImportStatusStore struct {
	redis RedisClient
	ttl   time.Duration
}

// NewImportStatusStore keeps the latest import status of each uid in Redis
// for ttl after its last update.
func NewImportStatusStore(redis RedisClient, ttl time.Duration) ImportStatusStore {
	return &redisImportStatusStore{redis: redis, ttl: ttl}
}

func importStatusKey(uid int32) string {
	return "wishes_import:" + strconv.Itoa(int(uid))
}

func (s *redisImportStatusStore) Set(ctx context.Context, info *models.ImportInfo) error {
	key := importStatusKey(info.UID)
	err := s.redis.HSet(ctx, key,
		"id", info.ID,
		"status", string(info.Status),
		"imported", info.Imported,
		"error", info.Error,
		"updated_at", info.UpdatedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("store import status: %w", err)
	}
	if s.ttl > 0 {
		if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("expire import status: %w", err)
		}
	}
	return nil
}

// Get returns nil when the uid has no recent import.
func (s *redisImportStatusStore) Get(ctx context.Context, uid int32) (*models.ImportInfo, error) {
	fields, err := s.redis.HGetAll(ctx, importStatusKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("load import status: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	info := &models.ImportInfo{
		ID:     fields["id"],
		UID:    uid,
		Status: models.ImportStatus(fields["status"]),
		Error:  fields["error"],
	}
	if n, err := strconv.Atoi(fields["imported"]); err == nil {
		info.Imported = n
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["updated_at"]); err == nil {
		info.UpdatedAt = ts
	}
	return info, nil
}
