package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hashblen/stardb-api/internal/logic"
	"github.com/hashblen/stardb-api/internal/worker"
)

// DefaultMaxImportBody limits paimon.moe import bodies to 32MB
const DefaultMaxImportBody = 32 << 20

// DefaultSubmitTimeout bounds how long an import waits for room on a full
// recalculation queue.
const DefaultSubmitTimeout = 10 * time.Second

// MaxBodySize limits the size of other request bodies to 64KB
const MaxBodySize = 64 << 10

// RecalcQueue defines the interface for the recalculation worker pool
type RecalcQueue interface {
	Enqueue(job worker.Job) bool
	Submit(ctx context.Context, job worker.Job) error
	QueueDepth() int
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Queue  RecalcQueue
	Checks map[string]HealthCheck
	Logger *zap.Logger
	// Services
	Stats        logic.StatsService
	Imports      logic.ImportService
	ImportStatus logic.ImportStatusStore
	Sessions     logic.SessionStore
	Users        logic.UsersService
	Achievements logic.AchievementsService
	TierList     logic.TierListService
	// Auth and limits
	APIKey        string
	SessionCookie string
	MaxImportBody int64
	SubmitTimeout time.Duration
}

type Handler struct {
	queue         RecalcQueue
	checks        map[string]HealthCheck
	logger        *zap.SugaredLogger
	validator     *validator.Validate
	stats         logic.StatsService
	imports       logic.ImportService
	importStatus  logic.ImportStatusStore
	sessions      logic.SessionStore
	users         logic.UsersService
	achievements  logic.AchievementsService
	tierList      logic.TierListService
	apiKey        string
	sessionCookie string
	maxImportBody int64
	submitTimeout time.Duration
}

func New(cfg Config) *Handler {
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = "id"
	}
	if cfg.MaxImportBody <= 0 {
		cfg.MaxImportBody = DefaultMaxImportBody
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultSubmitTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Handler{
		queue:         cfg.Queue,
		checks:        cfg.Checks,
		logger:        cfg.Logger.Sugar(),
		validator:     validator.New(),
		stats:         cfg.Stats,
		imports:       cfg.Imports,
		importStatus:  cfg.ImportStatus,
		sessions:      cfg.Sessions,
		users:         cfg.Users,
		achievements:  cfg.Achievements,
		tierList:      cfg.TierList,
		apiKey:        cfg.APIKey,
		sessionCookie: cfg.SessionCookie,
		maxImportBody: cfg.MaxImportBody,
		submitTimeout: cfg.SubmitTimeout,
	}
}
