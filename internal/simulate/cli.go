// Package simulate drives a running matchup service with a roster of
// players whose true skill is known, then checks the rankings and teams it
// produces.
package simulate

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/okian/matchup/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging configures logging to the console and, when logFile is set,
// to that file as well.
func SetupLogging(logFile string, verbose bool) error {
	level := "info"
	if verbose {
		level = "debug"
	}

	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	if err := logger.Init(logger.WithWriter(out), logger.WithLevel(level)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return nil
}

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`matchup simulation
==================

Creates a session on a running service, adds players with hidden skills,
records comparisons judged from those skills and checks that the rankings
recover them. Finishes by generating teams directly and as a background job.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string         Base URL of the service (default "http://localhost:9080")
  -activity string    Activity id (default "volleyball")
  -players int        Number of players (default 24)
  -comparisons int    Number of comparisons (default 400)
  -workers int        Concurrent workers (default CPU cores)
  -seed uint          Seed for skills and outcomes (default 1)
  -spread float       Hidden skill standard deviation (default 200)
  -draws float        Draw probability (default 0.05)
  -replays float      Probability of resubmitting a comparison (default 0.05)
  -teams int          Teams to generate, 0 skips (default 2)
  -min-corr float     Fail when a position's rank correlation is lower (default 0)
  -output string      Report file (default: simulation_TIMESTAMP.json)
  -log string         Also log to this file
  -timeout duration   HTTP request timeout (default 10s)
  -verbose            Enable verbose logging
  -help               Show this help message

Examples:
  go run ./cmd/simulate -players 40 -comparisons 2000 -min-corr 0.6
  go run ./cmd/simulate -activity league -teams 4 -verbose
`)
}
