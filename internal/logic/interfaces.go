package logic

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/hashblen/stardb-api/internal/gacha"
	"github.com/hashblen/stardb-api/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownProfile is returned when importing wishes for a uid without a profile.
	ErrUnknownProfile = errors.New("unknown profile")
	// ErrBadImport marks imports rejected because of their content.
	ErrBadImport = errors.New("bad import")
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RedisClient defines the interface for Redis client
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGet(ctx context.Context, key string, field string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// WishStore reads wish histories and persists their statistics.
type WishStore interface {
	UIDs(ctx context.Context) ([]int32, error)
	Pulls(ctx context.Context, uid int32, category gacha.Category) ([]gacha.Pull, error)
	EarliestTimestamp(ctx context.Context, uid int32, category gacha.Category) (*time.Time, error)
	InsertWishes(ctx context.Context, wishes map[gacha.Category][]models.Wish) error
	SetStats(ctx context.Context, uid int32, category gacha.Category, stats gacha.Stats) error
	GetStats(ctx context.Context, uid int32, category gacha.Category) (*models.WishStat, error)
	// WithStatsLock runs fn on a store bound to a transaction that holds
	// the advisory lock of uid's category.
	WithStatsLock(ctx context.Context, uid int32, category gacha.Category, fn func(WishStore) error) error
	ResolvePaimonItem(ctx context.Context, kind, paimonID string) (PaimonItem, error)
	ProfileExists(ctx context.Context, uid int32) (bool, error)
}

type StatsService interface {
	Recalculate(ctx context.Context, uid int32, categories ...gacha.Category) error
	GetStats(ctx context.Context, uid int32) (map[gacha.Category]*models.WishStat, error)
}

type ImportService interface {
	ImportPaimon(ctx context.Context, export *models.PaimonExport) (*ImportResult, error)
}

type ImportStatusStore interface {
	Set(ctx context.Context, info *models.ImportInfo) error
	Get(ctx context.Context, uid int32) (*models.ImportInfo, error)
}

type SessionStore interface {
	Username(ctx context.Context, sessionID string) (string, error)
}

type UsersService interface {
	UIDs(ctx context.Context, username string) ([]int32, error)
	IsAdmin(ctx context.Context, username string) (bool, error)
}

type AchievementsService interface {
	SetComment(ctx context.Context, id int64, comment string) error
	DeleteComment(ctx context.Context, id int64) error
}

type TierListService interface {
	GetCommunityTierList(ctx context.Context, lang models.Language) (*models.CommunityTierList, error)
}
