package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hashblen/stardb-api/internal/config"
	"github.com/hashblen/stardb-api/internal/gacha"
	"github.com/hashblen/stardb-api/internal/handlers"
	"github.com/hashblen/stardb-api/internal/logic"
	"github.com/hashblen/stardb-api/internal/scheduler"
	"github.com/hashblen/stardb-api/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadPolicies returns the embedded banner table unless a file overrides it.
func loadPolicies(path string) (gacha.PolicyTable, error) {
	if path == "" {
		return gacha.DefaultPolicies(), nil
	}
	return gacha.LoadPolicyFile(path)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policies, err := loadPolicies(cfg.PolicyFile)
	if err != nil {
		return fmt.Errorf("load banner policies: %w", err)
	}

	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	store := logic.NewWishStore(pg, policies)
	stats := logic.NewStatsService(store, policies, sugar)

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
		JobTimeout:  cfg.JobTimeout,
		Stats:       stats,
		Logger:      logger,
	})
	// Queued jobs still run after a shutdown signal.
	pool.Start(context.Background())
	defer pool.Stop()

	sched := scheduler.New(store, pool, sugar)
	if err := sched.Register(cfg.StatsCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if cfg.RunStatsOnStart {
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				sugar.Errorw("Startup recalculation failed", "error", err)
			}
		}()
	}

	h := handlers.New(handlers.Config{
		Queue: pool,
		Checks: map[string]handlers.HealthCheck{
			"postgres": pg.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Logger:        logger,
		Stats:         stats,
		Imports:       logic.NewImportService(store, policies, sugar),
		ImportStatus:  logic.NewImportStatusStore(rdb, cfg.ImportStatusTTL),
		Sessions:      logic.NewSessionStore(rdb),
		Users:         logic.NewUsersService(pg),
		Achievements:  logic.NewAchievementsService(pg),
		TierList:      logic.NewTierListService(pg, rdb, cfg.TierListCacheTTL, sugar),
		APIKey:        cfg.APIKey,
		SessionCookie: cfg.SessionCookie,
		MaxImportBody: cfg.MaxImportBodySize,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handlers.NewRouter(h, cfg.AllowedOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		sugar.Infow("Server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	sugar.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Server forced to shutdown", "error", err)
	}

	// Deferred: scheduler stops first, then the pool drains queued jobs.
	return nil
}
