package logic

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hashblen/stardb-api/internal/gacha"
	"github.com/hashblen/stardb-api/internal/models"
)

type statsService struct {
	store    WishStore
	policies gacha.PolicyTable
	logger   *zap.SugaredLogger
}

func NewStatsService(store WishStore, policies gacha.PolicyTable, logger *zap.SugaredLogger) StatsService {
	return &statsService{store: store, policies: policies, logger: logger}
}

// Recalculate recomputes the statistics of uid from its complete history.
// With no categories given, every banner is recomputed.
func (s *statsService) Recalculate(ctx context.Context, uid int32, categories ...gacha.Category) error {
	if len(categories) == 0 {
		categories = gacha.Categories
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range categories {
		g.Go(func() error {
			if err := s.recalculate(ctx, uid, c); err != nil {
				return fmt.Errorf("%s stats: %w", c, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *statsService) recalculate(ctx context.Context, uid int32, c gacha.Category) error {
	policy, err := s.policies.Policy(c)
	if err != nil {
		return err
	}

	return s.store.WithStatsLock(ctx, uid, c, func(store WishStore) error {
		pulls, err := store.Pulls(ctx, uid, c)
		if err != nil {
			return err
		}

		// Stored history is computed regardless, imports reject bad input up front.
		if err := gacha.Validate(pulls, policy); err != nil {
			s.logger.Warnw("Stored wish history failed validation", "uid", uid, "category", c, "error", err)
		}

		return store.SetStats(ctx, uid, c, gacha.Compute(pulls, policy))
	})
}

// GetStats returns the stored statistics of every banner that has any.
func (s *statsService) GetStats(ctx context.Context, uid int32) (map[gacha.Category]*models.WishStat, error) {
	stats := make([]*models.WishStat, len(gacha.Categories))

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range gacha.Categories {
		g.Go(func() error {
			stat, err := s.store.GetStats(ctx, uid, c)
			if err != nil {
				return err
			}
			stats[i] = stat
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[gacha.Category]*models.WishStat, len(stats))
	for i, stat := range stats {
		if stat != nil {
			result[gacha.Categories[i]] = stat
		}
	}
	return result, nil
}
