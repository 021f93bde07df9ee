package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/pipeline"
	"morning-snapshot/internal/report"
	"morning-snapshot/internal/store"
	"morning-snapshot/internal/trace"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "initialization failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() {
		if err := trace.Shutdown(context.Background()); err != nil {
			logger.Warn(context.Background(), "Tracer shutdown failed", "error", err)
		}
	}()

	if err := run(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Run failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	watchlist, err := store.LoadWatchlist(cfg)
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}
	logger.Info(ctx, "Watchlist loaded", "tickers", watchlist,
		"max_concurrent_browsers", cfg.MaxConcurrentBrowsers)

	sources, err := buildSources(ctx, cfg)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(newSessionProvider(cfg), sources, cfg.MaxConcurrentBrowsers)

	timer := logger.StartOperation(ctx, "collection-run", "tickers", len(watchlist))
	result, err := runner.Run(timer.GetContext(), watchlist)
	if err != nil {
		timer.EndWithError(err)
		return err
	}
	timer.End()

	today := time.Now()
	macroEnabled := sources.Macro != nil
	if err := report.WriteSnapshots(ctx, cfg.Output.SnapshotDir, today, result.Records, result.Macro, macroEnabled); err != nil {
		return err
	}

	items := report.PrepareItems(ctx, result.Records)
	path, err := report.WriteReport(ctx, cfg.Output.ReportDir, today, items, result.Macro)
	if err != nil {
		return err
	}
	if path != "" {
		logger.Info(ctx, "Morning snapshot complete", "report", path)
	}
	return nil
}
