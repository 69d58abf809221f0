// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Nested sections map to nested koanf keys (server.addr, jobs.queue_size).
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"slices"
	"time"

	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/rating"
)

// Config contains process configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Rating    rating.Params   `koanf:"rating"`
	Optimizer OptimizerConfig `koanf:"optimizer"`
	Storage   StorageConfig   `koanf:"storage"`
	Jobs      JobsConfig      `koanf:"jobs"`
	Metrics   MetricsConfig   `koanf:"metrics"`

	// DedupeSize bounds the comparison idempotency cache. Zero or less is unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// Activities extends or overrides the built-in activity catalog by id.
	Activities []model.ActivityConfig `koanf:"activities"`
}

// ServerConfig configures the listeners and logging.
type ServerConfig struct {
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MCPPath mounts the MCP streamable-HTTP handler. Empty disables it.
	MCPPath string `koanf:"mcp_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// OptimizerConfig bounds the team optimizer's local search.
type OptimizerConfig struct {
	MaxIterations int `koanf:"max_iterations"`
	// TimeBudgetMS stops local search after this many milliseconds; 0 disables.
	TimeBudgetMS int     `koanf:"time_budget_ms"`
	BalanceDecay float64 `koanf:"balance_decay"`
}

// TimeBudget returns the local-search wall-clock budget.
func (o OptimizerConfig) TimeBudget() time.Duration {
	return time.Duration(o.TimeBudgetMS) * time.Millisecond
}

// StorageConfig configures session persistence.
type StorageConfig struct {
	// DataDir holds one JSON document per session. Empty keeps sessions in memory only.
	DataDir string `koanf:"data_dir"`
}

// JobsConfig sizes the asynchronous team-generation pipeline.
type JobsConfig struct {
	QueueSize   int `koanf:"queue_size"`
	WorkerCount int `koanf:"worker_count"`
	TimeoutMS   int `koanf:"timeout_ms"`
}

// MetricsConfig names the Prometheus series and sizes the latency histograms.
type MetricsConfig struct {
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
	// Buckets bound the optimizer duration histogram in milliseconds.
	// Empty keeps the Prometheus defaults.
	Buckets []float64 `koanf:"buckets"`
	// Labels are attached to every series as constant labels.
	Labels map[string]string `koanf:"labels"`
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Timeout returns the per-job deadline.
func (j JobsConfig) Timeout() time.Duration {
	return time.Duration(j.TimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown window.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutMS) * time.Millisecond
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":9080",
			MCPPath:           "/mcp",
			LogLevel:          "info",
			LogFormat:         "text",
			ShutdownTimeoutMS: 10_000,
		},
		Rating: rating.DefaultParams(),
		Optimizer: OptimizerConfig{
			MaxIterations: 100,
			TimeBudgetMS:  0,
			BalanceDecay:  1000,
		},
		Jobs: JobsConfig{
			QueueSize:   1_000,
			WorkerCount: runtime.NumCPU(),
			TimeoutMS:   30_000,
		},
		Metrics: MetricsConfig{
			Namespace: "matchup",
			Subsystem: "engine",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		DedupeSize: 50_000,
	}
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Server.LogFormat != "text" && c.Server.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.Server.LogFormat)
	case c.Rating.Divisor <= 0:
		return fmt.Errorf("%w: rating.divisor must be positive", ErrInvalidConfig)
	case c.Rating.Base <= 1:
		return fmt.Errorf("%w: rating.base must be greater than 1", ErrInvalidConfig)
	case c.Rating.MinRating >= c.Rating.MaxRating:
		return fmt.Errorf("%w: rating.min_rating must be below rating.max_rating", ErrInvalidConfig)
	case c.Rating.MinPoolFactor <= 0 || c.Rating.MinPoolFactor > c.Rating.MaxPoolFactor:
		return fmt.Errorf("%w: pool factors must satisfy 0 < min <= max", ErrInvalidConfig)
	case c.Rating.TeamBalancedThreshold <= 0:
		return fmt.Errorf("%w: rating.team_balanced_threshold must be positive", ErrInvalidConfig)
	case c.Optimizer.MaxIterations < 0 || c.Optimizer.TimeBudgetMS < 0:
		return fmt.Errorf("%w: optimizer limits must not be negative", ErrInvalidConfig)
	case c.Optimizer.BalanceDecay <= 0:
		return fmt.Errorf("%w: optimizer.balance_decay must be positive", ErrInvalidConfig)
	case c.Jobs.QueueSize <= 0 || c.Jobs.WorkerCount <= 0:
		return fmt.Errorf("%w: jobs.queue_size and jobs.worker_count must be positive", ErrInvalidConfig)
	case c.Jobs.TimeoutMS < 0:
		return fmt.Errorf("%w: jobs.timeout_ms must not be negative", ErrInvalidConfig)
	case !metricName.MatchString(c.Metrics.Namespace):
		return fmt.Errorf("%w: metrics.namespace %q is not a valid metric name", ErrInvalidConfig, c.Metrics.Namespace)
	case c.Metrics.Subsystem != "" && !metricName.MatchString(c.Metrics.Subsystem):
		return fmt.Errorf("%w: metrics.subsystem %q is not a valid metric name", ErrInvalidConfig, c.Metrics.Subsystem)
	case !slices.IsSorted(c.Metrics.Buckets) || len(slices.Compact(slices.Clone(c.Metrics.Buckets))) != len(c.Metrics.Buckets):
		return fmt.Errorf("%w: metrics.buckets must be strictly increasing", ErrInvalidConfig)
	}
	for name := range c.Metrics.Labels {
		if !metricName.MatchString(name) {
			return fmt.Errorf("%w: metrics label %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	for _, a := range c.Activities {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
