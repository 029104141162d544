// Package worker runs statistics recalculations off the request path.
// Jobs are sharded by uid: every job of a uid runs on the same worker, in
// submission order, so recalculations of one player never overlap.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/hashblen/stardb-api/internal/gacha"
)

// ErrPoolStopped is returned when submitting to a stopped pool.
var ErrPoolStopped = errors.New("worker pool stopped")

// Prometheus metrics
var (
	jobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stardb_recalculations_enqueued_total",
		Help: "Total number of statistics recalculations enqueued",
	})

	jobsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stardb_recalculations_processed_total",
		Help: "Total number of statistics recalculations completed",
	})

	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stardb_recalculations_failed_total",
		Help: "Total number of statistics recalculations that failed",
	})

	jobsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stardb_recalculations_load_shed_total",
		Help: "Total number of recalculations dropped because the queue was full",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stardb_worker_queue_depth",
		Help: "Current number of queued recalculations",
	})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stardb_recalculation_duration_seconds",
		Help:    "Duration of a single uid recalculation",
		Buckets: prometheus.DefBuckets,
	})
)

// Recalculator recomputes the statistics of one uid.
type Recalculator interface {
	Recalculate(ctx context.Context, uid int32, categories ...gacha.Category) error
}

// Job represents a unit of work for the worker pool
type Job struct {
	UID        int32
	Categories []gacha.Category // empty means every banner
	Reason     string
	Done       func(error) // optional, called after the job ran
	Enqueued   time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount int
	QueueSize   int // total capacity, split evenly across workers
	JobTimeout  time.Duration
	Stats       Recalculator
	Logger      *zap.Logger
}

// Pool manages a pool of workers for async recalculation
type Pool struct {
	config PoolConfig
	queues []chan Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.SugaredLogger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	perWorker := max(cfg.QueueSize/cfg.WorkerCount, 1)
	queues := make([]chan Job, cfg.WorkerCount)
	for i := range queues {
		queues[i] = make(chan Job, perWorker)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		config: cfg,
		queues: queues,
		ctx:    ctx,
		cancel: cancel,
		logger: cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i, queue := range p.queues {
		p.wg.Add(1)
		go p.worker(i, queue)
	}

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
	)
}

// Stop closes the queues and waits until every queued job has run.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, queue := range p.queues {
		close(queue)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) shard(uid int32) chan Job {
	return p.queues[uint32(uid)%uint32(len(p.queues))]
}

// Enqueue adds a job without blocking. It returns false when the uid's
// queue is full or the pool is stopped.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now()
	}

	select {
	case p.shard(job.UID) <- job:
		jobsEnqueued.Inc()
		queueDepth.Inc()
		return true
	default:
		p.logger.Warnw("Worker queue full, dropping recalculation", "uid", job.UID, "reason", job.Reason)
		jobsLoadShed.Inc()
		return false
	}
}

// Submit adds a job, waiting for queue space until ctx is done.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolStopped
	}

	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now()
	}

	select {
	case p.shard(job.UID) <- job:
		jobsEnqueued.Inc()
		queueDepth.Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	depth := 0
	for _, queue := range p.queues {
		depth += len(queue)
	}
	return depth
}

func (p *Pool) worker(id int, queue <-chan Job) {
	defer p.wg.Done()

	for job := range queue {
		queueDepth.Dec()
		p.process(id, job)
	}
}

func (p *Pool) process(id int, job Job) {
	ctx := p.ctx
	if p.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := p.run(ctx, job)
	jobDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		jobsFailed.Inc()
		p.logger.Errorw("Recalculation failed",
			"worker", id,
			"uid", job.UID,
			"reason", job.Reason,
			"error", err,
		)
	} else {
		jobsProcessed.Inc()
		p.logger.Debugw("Recalculation finished",
			"worker", id,
			"uid", job.UID,
			"reason", job.Reason,
			"waited", start.Sub(job.Enqueued),
			"duration", time.Since(start),
		)
	}

	if job.Done != nil {
		job.Done(err)
	}
}

func (p *Pool) run(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recalculation panic: %v", r)
		}
	}()
	return p.config.Stats.Recalculate(ctx, job.UID, job.Categories...)
}
