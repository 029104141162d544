// Package scheduler periodically recomputes the statistics of every uid.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hashblen/stardb-api/internal/worker"
)

// UIDLister lists every uid with stored wishes.
type UIDLister interface {
	UIDs(ctx context.Context) ([]int32, error)
}

// Submitter queues a recalculation, waiting for queue space.
type Submitter interface {
	Submit(ctx context.Context, job worker.Job) error
}

// Scheduler manages the recurring full recalculation.
type Scheduler struct {
	cron   *cron.Cron
	uids   UIDLister
	pool   Submitter
	logger *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(uids UIDLister, pool Submitter, logger *zap.SugaredLogger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		// A sweep still running when the next one fires is not restarted.
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		uids:   uids,
		pool:   pool,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register schedules the sweep. Schedules have a seconds field, e.g.
// "0 0 4 * * *" for every day at 04:00.
func (s *Scheduler) Register(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.RunNow(s.ctx); err != nil {
			s.logger.Errorw("Scheduled recalculation failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register recalculation %q: %w", schedule, err)
	}

	s.logger.Infow("Recalculation scheduled", "schedule", schedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop aborts a running sweep and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow queues a recalculation of every uid and returns how many were
// queued. It stops early when ctx is done.
func (s *Scheduler) RunNow(ctx context.Context) (int, error) {
	uids, err := s.uids.UIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list uids: %w", err)
	}

	s.logger.Infow("Starting full recalculation", "uids", len(uids))

	queued := 0
	for _, uid := range uids {
		if err := s.pool.Submit(ctx, worker.Job{UID: uid, Reason: "scheduled"}); err != nil {
			return queued, fmt.Errorf("queue uid %d: %w", uid, err)
		}
		queued++
	}

	s.logger.Infow("Full recalculation queued", "queued", queued)
	return queued, nil
}
