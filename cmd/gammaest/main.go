package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/covidpolicy/gammaest/internal/config"
	"github.com/covidpolicy/gammaest/internal/report"
	"github.com/covidpolicy/gammaest/internal/runner"
)

func main() {
	// Logs go to stderr; stdout carries the summary table.
	bootstrap := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.LoadOrDefault(config.DefaultPath)
	if err != nil {
		bootstrap.Error("failed to load config", "path", config.DefaultPath, "err", err)
		os.Exit(1)
	}
	// Validated by config.Load.
	level, _ := config.ParseLevel(cfg.LogLevel)

	runID := uuid.NewString()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("run_id", runID)
	slog.SetDefault(logger)

	logger.Info("gammaest starting",
		"countries", cfg.Tags(),
		"min_cum_cases", cfg.MinCumCases,
		"delays", cfg.RemovalDelays.Days(),
	)

	start := time.Now()
	res, err := runner.Run(cfg, runID, logger)
	if err != nil {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}

	summary := report.Summary{RunID: runID, Table: res.Table, Findings: res.Findings}
	if err := report.RenderSummary(os.Stdout, summary); err != nil {
		logger.Error("failed to print summary", "err", err)
		os.Exit(1)
	}
	logger.Info("gammaest finished", "elapsed", time.Since(start), "findings", len(res.Findings))
}
