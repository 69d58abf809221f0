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

	"github.com/okian/matchup/internal/adapters/http/api"
	"github.com/okian/matchup/internal/adapters/http/swagger"
	"github.com/okian/matchup/internal/adapters/mcp"
	app "github.com/okian/matchup/internal/app"
	"github.com/okian/matchup/internal/config"
	"github.com/okian/matchup/internal/domain/activity"
	"github.com/okian/matchup/internal/domain/rating"
	"github.com/okian/matchup/internal/domain/teams"
	"github.com/okian/matchup/pkg/logger"
	"github.com/okian/matchup/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

// version is reported to MCP clients.
var version = "dev"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.Server.LogFormat), logger.WithLevel(cfg.Server.LogLevel)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	metrics.Init(
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithSubsystem(cfg.Metrics.Subsystem),
		metrics.WithHistogramBuckets(cfg.Metrics.Buckets),
		metrics.WithCustomLabels(cfg.Metrics.Labels),
	)

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "matchup exited", logger.Error(err))
		os.Exit(1)
	}
}

// run wires the service and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newMux(cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Server.Addr),
			logger.String("mcp", cfg.Server.MCPPath),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			_ = svc.Stop(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the service from configuration without starting it.
func newService(cfg *config.Config) (*app.Service, error) {
	catalog, err := activity.NewStatic(activity.Merge(activity.Defaults(), cfg.Activities)...)
	if err != nil {
		return nil, fmt.Errorf("activity catalog: %w", err)
	}

	return app.New(
		app.WithLogger(logger.Get().Named("service")),
		app.WithCatalog(catalog),
		app.WithRatingModel(rating.New(rating.WithParams(cfg.Rating))),
		app.WithOptimizerOptions(
			teams.WithMaxIterations(cfg.Optimizer.MaxIterations),
			teams.WithTimeBudget(cfg.Optimizer.TimeBudget()),
			teams.WithBalanceDecay(cfg.Optimizer.BalanceDecay),
		),
		app.WithWorkerCount(cfg.Jobs.WorkerCount),
		app.WithQueueSize(cfg.Jobs.QueueSize),
		app.WithJobTimeout(cfg.Jobs.Timeout()),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithDataDir(cfg.Storage.DataDir),
	), nil
}

// newMux registers the REST API, its docs and the MCP endpoint.
func newMux(cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()

	swagger.Register(mux)
	api.NewServer(svc).Register(mux)

	if cfg.Server.MCPPath != "" {
		tools := mcp.New(svc,
			mcp.WithImplementation("matchup", version),
			mcp.WithLogger(logger.Get().Named("mcp")),
		)
		mux.Handle(cfg.Server.MCPPath, tools.Handler())
	}
	return mux
}

// startServiceMetricsUpdater refreshes queue and inventory gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.GetStats(ctx)
		}
	}
}
