// Package worker runs queued team-generation jobs.
package worker

import (
	"time"

	"github.com/okian/matchup/pkg/logger"
)

// Option applies a configuration option to a worker or pool.
type Option func(*settings)

type settings struct {
	name       string
	logger     logger.Logger
	jobTimeout time.Duration
}

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithJobTimeout bounds each job's run time. Zero disables the deadline.
func WithJobTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.jobTimeout = d
		}
	}
}
