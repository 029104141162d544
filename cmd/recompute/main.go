// Command recompute rebuilds wish statistics outside the server, for one
// uid or for every uid with stored wishes. Each banner is recomputed under
// the same Postgres advisory lock the server's workers take, so it is safe
// to run next to a live API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hashblen/stardb-api/internal/config"
	"github.com/hashblen/stardb-api/internal/gacha"
	"github.com/hashblen/stardb-api/internal/logic"
)

func main() {
	uid := flag.Int("uid", 0, "recompute a single uid (default: all)")
	concurrency := flag.Int("concurrency", 8, "uids recomputed in parallel")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := run(sugar, int32(*uid), *concurrency); err != nil {
		sugar.Errorw("Recompute failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *zap.SugaredLogger, uid int32, concurrency int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policies := gacha.DefaultPolicies()
	if cfg.PolicyFile != "" {
		if policies, err = gacha.LoadPolicyFile(cfg.PolicyFile); err != nil {
			return fmt.Errorf("load banner policies: %w", err)
		}
	}

	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	store := logic.NewWishStore(pg, policies)
	stats := logic.NewStatsService(store, policies, logger)

	uids := []int32{uid}
	if uid == 0 {
		if uids, err = store.UIDs(ctx); err != nil {
			return err
		}
	}
	logger.Infow("Recomputing wish statistics", "uids", len(uids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for _, u := range uids {
		g.Go(func() error {
			return stats.Recalculate(ctx, u)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Infow("Recompute finished", "uids", len(uids))
	return nil
}
