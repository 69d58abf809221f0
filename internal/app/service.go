// Package service composes the rating engine, the session store and the
// team-job pipeline into the operations exposed by the HTTP and MCP
// adapters.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchup/internal/adapters/mq/queue"
	"github.com/okian/matchup/internal/adapters/mq/worker"
	"github.com/okian/matchup/internal/adapters/repository"
	"github.com/okian/matchup/internal/domain/activity"
	"github.com/okian/matchup/internal/domain/dedupe"
	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/rating"
	"github.com/okian/matchup/internal/domain/selector"
	"github.com/okian/matchup/internal/domain/teams"
	"github.com/okian/matchup/pkg/logger"
	"github.com/okian/matchup/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize  = 1000
	defaultDedupeSize = 50000
	defaultJobTimeout = 30 * time.Second
)

// Service implements the operations behind the HTTP API and MCP tools.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	catalog   activity.Catalog
	model     *rating.Model
	selector  *selector.Selector
	optimizer *teams.Optimizer
	deduper   dedupe.Deduper
	jobQueue  queue.Queue
	pool      *worker.Pool
	jobs      *jobRegistry

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	jobTimeout    time.Duration
	dataDir       string
	optimizerOpts []teams.Option

	now   func() time.Time
	newID func() string

	// State
	started bool

	logger logger.Logger
}

// New constructs a Service. Engine components are ready immediately; the
// store, deduper and job pipeline are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		jobTimeout:  defaultJobTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.model == nil {
		s.model = rating.New()
	}
	if s.catalog == nil {
		s.catalog, _ = activity.NewStatic(activity.Defaults()...)
	}
	s.selector = selector.New(s.model,
		selector.WithClock(s.now),
		selector.WithIDGenerator(s.newID),
	)
	s.optimizer = teams.New(s.model, s.optimizerOpts...)
	s.jobs = newJobRegistry(s.queueSize * 2)
	return s
}

// Start initializes the store, the deduper and the team-job workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting matchup service...")

	if s.store == nil {
		store, err := repository.NewDocumentStore(ctx, repository.WithDataDir(s.dataDir))
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		s.store = store
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobQueue, s,
		worker.WithLogger(s.logger.Named("jobs")),
		worker.WithJobTimeout(s.jobTimeout),
	)
	s.pool.Start(ctx)

	sessions, players := s.store.Count(ctx)
	s.started = true
	s.logger.Info(ctx, "matchup service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("sessions", sessions),
		logger.Int("players", players),
		logger.String("dataDir", s.dataDir),
	)
	return nil
}

// Stop drains the job queue and shuts the workers down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping matchup service...")

	var err error
	if s.pool != nil {
		err = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "matchup service stopped")
	return err
}

// ready returns ErrNotStarted until Start has run.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Activities lists the activities sessions can be created for.
func (s *Service) Activities() []model.ActivityConfig {
	return s.catalog.List()
}

// RatingParams exposes the configured rating constants.
func (s *Service) RatingParams() rating.Params {
	return s.model.Params()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		sessions, players := s.store.Count(ctx)
		queueLen := s.jobQueue.Len(ctx)
		stats["sessions"] = sessions
		stats["players"] = players
		stats["queueLength"] = queueLen
		stats["trackedRequests"] = s.deduper.Size()
		stats["jobs"] = s.jobs.Len()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateInventory(sessions, players)
	}

	return stats
}

// fail logs err against op and counts it by kind.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	kind := errorKind(err)
	metrics.RecordErrorByComponent("service", kind)
	if kind == "internal" {
		s.logger.Error(ctx, op+" failed", logger.Error(err))
	} else {
		s.logger.Debug(ctx, op+" rejected", logger.String("kind", kind), logger.Error(err))
	}
	return err
}
