package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"morning-snapshot/internal/extract"
	"morning-snapshot/internal/extract/extractobs"
	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/pipeline"
	"morning-snapshot/internal/session"
	"morning-snapshot/internal/sources/googlenews"
	"morning-snapshot/internal/sources/kite"
	"morning-snapshot/internal/sources/marketwatch"
	"morning-snapshot/internal/sources/vitalknowledge"
	"morning-snapshot/internal/sources/yahoo"
	"morning-snapshot/internal/store"
	"morning-snapshot/internal/trace"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("SNAPSHOT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// newSessionProvider builds the browsing session provider
func newSessionProvider(cfg *store.Config) *session.Provider {
	return session.NewProvider(
		time.Duration(cfg.Session.TimeoutSeconds)*time.Second,
		cfg.Session.UserAgent,
	)
}

// initializeExtractor initializes the extraction engine with observability
func initializeExtractor(ctx context.Context, cfg *store.Config) interfaces.Extractor {
	extractor := extract.FromConfig(cfg)
	if _, ok := extractor.(*extract.NoopExtractor); ok {
		logger.Warn(ctx, "No LLM provider configured - extraction-backed fields will be absent")
	}

	// Wrap with observability middleware
	return extractobs.Wrap(extractor)
}

// buildSources wires the enabled source connectors
func buildSources(ctx context.Context, cfg *store.Config) (pipeline.Sources, error) {
	extractor := initializeExtractor(ctx, cfg)

	var sources pipeline.Sources

	if store.SourceEnabled(cfg.Sources.YahooQuote) {
		if cfg.QuoteSource == "KITE" {
			quote, err := kite.NewQuoteSource()
			if err != nil {
				return sources, fmt.Errorf("initialize kite quotes: %w", err)
			}
			sources.Quote = quote
			logger.Info(ctx, "Using Kite Connect for quotes")
		} else {
			sources.Quote = yahoo.NewQuoteSource(extractor)
		}
	}
	if store.SourceEnabled(cfg.Sources.YahooAnalysis) {
		sources.Analysis = yahoo.NewAnalysisSource(extractor)
	}
	if store.SourceEnabled(cfg.Sources.MarketWatch) {
		sources.Stories = marketwatch.NewStoriesSource(extractor, cfg.MarketWatch.MaxCards)
	}
	if store.SourceEnabled(cfg.Sources.GoogleNews) {
		sources.News = googlenews.NewNewsSource(extractor, cfg.GoogleNews.MaxStories, cfg.GoogleNews.MaxDays)
	}
	if store.SourceEnabled(cfg.Sources.VitalNews) {
		sources.Research = vitalknowledge.NewResearchSource(extractor)
	}
	if store.SourceEnabled(cfg.Sources.MacroNews) {
		sources.Macro = vitalknowledge.NewMacroSource(extractor)
	}

	logger.Info(ctx, "Sources enabled",
		"quote", sources.Quote != nil,
		"analysis", sources.Analysis != nil,
		"marketwatch", sources.Stories != nil,
		"googlenews", sources.News != nil,
		"vital_knowledge", sources.Research != nil,
		"macro_news", sources.Macro != nil,
	)

	return sources, nil
}
