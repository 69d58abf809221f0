package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/matchup/internal/adapters/mq/queue"
	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/pkg/logger"
	"github.com/okian/matchup/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultJobTimeout   = 30 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Runner executes one team job. The app service implements it.
type Runner interface {
	RunJob(ctx context.Context, job model.TeamJob) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)
	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	runner Runner
	settings

	busy *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}
}

func newSettings(opts []Option) settings {
	s := settings{name: "worker", jobTimeout: defaultJobTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("worker")
	}
	return s
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, runner Runner, opts ...Option) *InMemoryWorker {
	s := newSettings(opts)
	return &InMemoryWorker{
		queue:    q,
		runner:   runner,
		settings: s,
		busy:     &atomic.Int64{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "team job failed",
					logger.String("job_id", job.ID),
					logger.String("session_id", job.SessionID),
					logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	metrics.UpdateWorkerActiveCount(int(w.busy.Add(1)))
	defer func() { metrics.UpdateWorkerActiveCount(int(w.busy.Add(-1))) }()

	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := w.runner.RunJob(ctx, job)
	if err != nil {
		metrics.RecordJobFinished(string(model.JobFailed))
		metrics.RecordErrorByComponent("worker", "job_failed")
		return fmt.Errorf("job %s: %w", job.ID, err)
	}
	metrics.RecordJobFinished(string(model.JobDone))
	w.logger.Debug(ctx, "team job finished",
		logger.String("job_id", job.ID),
		logger.Duration("took", time.Since(start)))
	return nil
}

// Pool manages multiple workers reading the same queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers sharing q and runner. Options apply
// to every worker.
func NewPool(workerCount int, q Queue, runner Runner, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	s := newSettings(opts)
	busy := &atomic.Int64{}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  s.logger.Named("pool"),
	}
	for i := range p.workers {
		ws := s
		ws.name = "worker-" + strconv.Itoa(i)
		ws.logger = s.logger.With(logger.String("worker", ws.name))
		p.workers[i] = &InMemoryWorker{
			queue:    q,
			runner:   runner,
			settings: ws,
			busy:     busy,
			shutdown: make(chan struct{}),
			done:     make(chan struct{}),
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, if it can be closed, and waits for the workers
// to drain it. Workers still busy when ctx or the pool timeout expires are
// told to stop after their current job.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var err error
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker did not drain in time", logger.String("worker", w.name))
			close(w.shutdown)
			if err == nil {
				err = fmt.Errorf("pool shutdown: %w", shutdownCtx.Err())
			}
		}
	}
	return err
}
