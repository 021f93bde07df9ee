// Package report persists run output: the per-category JSON snapshots and
// the Markdown morning report.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/types"
)

// Payload fields stay in every entry and serialize as null when the source
// produced nothing, so a snapshot reader can tell "absent" from "omitted".

type quoteEntry struct {
	Ticker string               `json:"ticker"`
	Error  *string              `json:"error"`
	Quote  *types.QuoteSnapshot `json:"quote"`
}

type analysisEntry struct {
	Ticker   string            `json:"ticker"`
	Error    *string           `json:"error"`
	Analysis *types.AIAnalysis `json:"analysis"`
}

type marketwatchEntry struct {
	Ticker      string            `json:"ticker"`
	Error       *string           `json:"error"`
	MarketWatch *types.TopStories `json:"marketwatch"`
}

type googleNewsEntry struct {
	Ticker     string             `json:"ticker"`
	Error      *string            `json:"error"`
	GoogleNews *types.NewsStories `json:"googlenews"`
}

type vitalKnowledgeEntry struct {
	Ticker         string          `json:"ticker"`
	Error          *string         `json:"error"`
	VitalKnowledge *types.Research `json:"vital_knowledge"`
}

type tickerSnapshot[E any] struct {
	AsOf    string `json:"as_of"`
	Tickers []E    `json:"tickers"`
}

type macroSnapshot struct {
	AsOf      string              `json:"as_of"`
	MacroNews *types.MacroSummary `json:"macro_news"`
}

// WriteSnapshots writes the per-category JSON snapshots for one day. Paths
// are keyed by date, so rerunning the same day overwrites in place. The
// macro snapshot is only written when the macro source is enabled.
func WriteSnapshots(ctx context.Context, dir string, asOf time.Time, records []*types.TickerRecord, macro *types.MacroSummary, macroEnabled bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	date := asOf.Format("2006-01-02")

	if err := writeCategory(ctx, dir, "quote", date, records, func(r *types.TickerRecord) quoteEntry {
		return quoteEntry{Ticker: r.Ticker, Error: r.Error, Quote: r.Quote}
	}); err != nil {
		return err
	}
	if err := writeCategory(ctx, dir, "analysis", date, records, func(r *types.TickerRecord) analysisEntry {
		return analysisEntry{Ticker: r.Ticker, Error: r.Error, Analysis: r.Analysis}
	}); err != nil {
		return err
	}
	if err := writeCategory(ctx, dir, "marketwatch", date, records, func(r *types.TickerRecord) marketwatchEntry {
		return marketwatchEntry{Ticker: r.Ticker, Error: r.Error, MarketWatch: r.MarketWatch}
	}); err != nil {
		return err
	}
	if err := writeCategory(ctx, dir, "googlenews", date, records, func(r *types.TickerRecord) googleNewsEntry {
		return googleNewsEntry{Ticker: r.Ticker, Error: r.Error, GoogleNews: r.GoogleNews}
	}); err != nil {
		return err
	}
	if err := writeCategory(ctx, dir, "vital_knowledge", date, records, func(r *types.TickerRecord) vitalKnowledgeEntry {
		return vitalKnowledgeEntry{Ticker: r.Ticker, Error: r.Error, VitalKnowledge: r.VitalKnowledge}
	}); err != nil {
		return err
	}

	if macroEnabled {
		path := filepath.Join(dir, fmt.Sprintf("macro_news_snapshot_%s.json", date))
		if err := writeJSON(path, macroSnapshot{AsOf: date, MacroNews: macro}); err != nil {
			return err
		}
		logger.Info(ctx, "Snapshot written", "category", "macro_news", "path", path)
	}

	return nil
}

func writeCategory[E any](ctx context.Context, dir, prefix, date string, records []*types.TickerRecord, pick func(*types.TickerRecord) E) error {
	entries := make([]E, len(records))
	for i, rec := range records {
		entries[i] = pick(rec)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_snapshot_%s.json", prefix, date))
	if err := writeJSON(path, tickerSnapshot[E]{AsOf: date, Tickers: entries}); err != nil {
		return err
	}
	logger.Info(ctx, "Snapshot written", "category", prefix, "path", path)
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
