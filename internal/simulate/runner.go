package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/matchup/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	reportPermission    = 0o600
)

// Run drives one full simulation against a running service.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime:   time.Now(),
		Reasons:     map[string]int{},
		Correlation: map[string]float64{},
	}

	logger.Get().Info(ctx, "starting matchup simulation",
		logger.String("baseURL", config.BaseURL),
		logger.String("activity", config.Activity),
		logger.Int("players", config.Players),
		logger.Int("comparisons", config.Comparisons),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("seed", config.Seed))

	if config.Workers < 1 {
		config.Workers = 1
	}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Build the roster
	act, err := fetchActivity(ctx, client, config.Activity)
	if err != nil {
		return nil, err
	}
	rng := newRand(config.Seed)
	players := generateRoster(act, config.Players, config.Spread, rng)

	sessionID, err := createSession(ctx, client, act, players, stats)
	if err != nil {
		return nil, err
	}

	// Step 3: Compare concurrently
	if err := runComparisons(ctx, config, client, sessionID, players, stats); err != nil {
		return stats, fmt.Errorf("comparisons failed: %w", err)
	}

	// Step 4: Verify rankings
	if err := verifyRankings(ctx, config, client, sessionID, players, stats); err != nil {
		return stats, fmt.Errorf("ranking verification failed: %w", err)
	}

	// Step 5: Teams
	if err := generateTeams(ctx, config, client, sessionID, stats); err != nil {
		return stats, fmt.Errorf("team generation failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if config.OutputFile != "" {
		if err := saveReport(ctx, config.OutputFile, players, stats); err != nil {
			logger.Get().Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	displayFinalStats(ctx, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")
	if err := client.get(ctx, "/healthz", nil); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// DefaultReportFile returns a timestamped report name.
func DefaultReportFile() string {
	return "simulation_" + time.Now().Format("20060102_150405") + ".json"
}

// saveReport writes the roster with hidden skills and the run statistics.
func saveReport(ctx context.Context, filename string, players []Player, stats *Stats) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(struct {
		Players []Player `json:"players"`
		Stats   *Stats   `json:"stats"`
	}{players, stats}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Get().Info(ctx, "report saved", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.ComparisonsSent) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("session", stats.SessionID),
		logger.Int("players", stats.PlayersAdded),
		logger.Int("sent", stats.ComparisonsSent),
		logger.Int("recorded", stats.ComparisonsRecorded),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("conflicts", stats.Conflicts),
		logger.Int("failed", stats.Failed),
		logger.Any("reasons", stats.Reasons),
		logger.Any("correlation", stats.Correlation),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("comparisonsPerSecond", perSecond))
}
