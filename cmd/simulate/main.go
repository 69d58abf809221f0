package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/matchup/internal/simulate"
)

// Default configuration constants.
const (
	defaultPlayers     = 24
	defaultComparisons = 400
	defaultSpread      = 200
	defaultTimeout     = 10 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		activity    = flag.String("activity", "volleyball", "Activity id")
		players     = flag.Int("players", defaultPlayers, "Number of players")
		comparisons = flag.Int("comparisons", defaultComparisons, "Number of comparisons")
		workers     = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		seed        = flag.Uint64("seed", 1, "Seed for skills and outcomes")
		spread      = flag.Float64("spread", defaultSpread, "Hidden skill standard deviation")
		draws       = flag.Float64("draws", 0.05, "Draw probability")
		replays     = flag.Float64("replays", 0.05, "Probability of resubmitting a comparison")
		teams       = flag.Int("teams", 2, "Teams to generate (0 skips)")
		minCorr     = flag.Float64("min-corr", 0, "Minimum rank correlation per position")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Report file (default: simulation_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Also log to this file")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	if err := simulate.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	if *outputFile == "" {
		*outputFile = simulate.DefaultReportFile()
	}

	config := &simulate.Config{
		BaseURL:     *baseURL,
		Activity:    *activity,
		Players:     *players,
		Comparisons: *comparisons,
		Workers:     *workers,
		Timeout:     *timeout,
		Seed:        *seed,
		Spread:      *spread,
		DrawRate:    *draws,
		ReplayRate:  *replays,
		Teams:       *teams,
		MinCorr:     *minCorr,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if _, err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
