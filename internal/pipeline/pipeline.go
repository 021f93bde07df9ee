// Package pipeline orchestrates one collection run: every watchlist ticker
// through every enabled source, plus the batch research and macro tasks,
// under a bounded number of concurrent browsing sessions.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/session"
	"morning-snapshot/internal/types"
)

// Sources holds the connectors for a run. A nil connector means that source
// is disabled.
type Sources struct {
	Quote    interfaces.QuoteSource
	Analysis interfaces.AnalysisSource
	Stories  interfaces.StoriesSource
	News     interfaces.NewsSource
	Research interfaces.ResearchSource
	Macro    interfaces.MacroSource
}

// Result is everything a run produced, in watchlist order.
type Result struct {
	Records []*types.TickerRecord
	Macro   *types.MacroSummary
}

// Runner executes collection runs. The gate bounds how many ticker tasks
// hold sessions at once; the batch research and macro tasks run outside it,
// so worst-case session use is the gate limit plus two.
type Runner struct {
	provider interfaces.SessionProvider
	sources  Sources
	gate     *semaphore.Weighted
}

func NewRunner(provider interfaces.SessionProvider, sources Sources, maxConcurrent int) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Runner{
		provider: provider,
		sources:  sources,
		gate:     semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Run processes the whole watchlist. Records come back in watchlist order,
// one per ticker, no matter which sources failed. Only context cancellation
// ends a run early.
func (r *Runner) Run(ctx context.Context, tickers []string) (*Result, error) {
	logger.Info(ctx, "Starting collection run", "tickers", len(tickers))

	records := make([]*types.TickerRecord, len(tickers))
	var wg sync.WaitGroup

	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			rec := types.NewTickerRecord(ticker)
			if err := r.gate.Acquire(ctx, 1); err != nil {
				rec.AddError(fmt.Sprintf("run canceled: %v", err))
				records[i] = rec
				return
			}
			defer r.gate.Release(1)
			r.processTicker(ctx, rec)
			records[i] = rec
		}(i, ticker)
	}

	// Batch research and macro news run independently of the ticker gate;
	// each holds exactly one session.
	var macro *types.MacroSummary
	if r.sources.Macro != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			macro = r.fetchMacro(ctx)
		}()
	}

	var research map[string]*types.Research
	if r.sources.Research != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			research = r.fetchResearchBatch(ctx, tickers)
		}()
	}

	wg.Wait()

	if r.sources.Research != nil {
		mergeResearch(ctx, records, research)
	}

	logger.Info(ctx, "Collection run complete", "tickers", len(records), "macro", macro != nil)
	return &Result{Records: records, Macro: macro}, nil
}

// processTicker runs every enabled per-ticker source sequentially, each
// with its own session. A source failure is recorded on the ticker and the
// remaining sources still run.
func (r *Runner) processTicker(ctx context.Context, rec *types.TickerRecord) {
	ticker := rec.Ticker
	logger.Info(ctx, "Processing ticker", "ticker", ticker)

	if src := r.sources.Quote; src != nil {
		err := session.With(ctx, r.provider, func(s interfaces.Session) error {
			quote, err := src.Fetch(ctx, s, ticker)
			if err != nil {
				return err
			}
			rec.Quote = quote
			return nil
		})
		r.finishSource(ctx, rec, src.Name(), err)
	}

	if src := r.sources.Analysis; src != nil {
		err := session.With(ctx, r.provider, func(s interfaces.Session) error {
			analysis, err := src.Fetch(ctx, s, ticker)
			if err != nil {
				return err
			}
			rec.Analysis = analysis
			return nil
		})
		r.finishSource(ctx, rec, src.Name(), err)
	}

	if src := r.sources.Stories; src != nil {
		err := session.With(ctx, r.provider, func(s interfaces.Session) error {
			stories, err := src.Fetch(ctx, s, ticker)
			if err != nil {
				return err
			}
			rec.MarketWatch = stories
			return nil
		})
		r.finishSource(ctx, rec, src.Name(), err)
	}

	if src := r.sources.News; src != nil {
		err := session.With(ctx, r.provider, func(s interfaces.Session) error {
			news, err := src.Fetch(ctx, s, ticker)
			if err != nil {
				return err
			}
			rec.GoogleNews = news
			return nil
		})
		r.finishSource(ctx, rec, src.Name(), err)
	}
}

func (r *Runner) finishSource(ctx context.Context, rec *types.TickerRecord, name string, err error) {
	if err != nil {
		logger.ErrorWithErr(ctx, "Source failed", err, "ticker", rec.Ticker, "source", name)
		rec.AddError(fmt.Sprintf("%s failed", name))
	}
	logger.SourceResult(ctx, name, rec.Ticker, err == nil)
}

func (r *Runner) fetchMacro(ctx context.Context) *types.MacroSummary {
	var macro *types.MacroSummary
	err := session.With(ctx, r.provider, func(s interfaces.Session) error {
		m, err := r.sources.Macro.Fetch(ctx, s)
		if err != nil {
			return err
		}
		macro = m
		return nil
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Macro news fetch failed", err, "source", r.sources.Macro.Name())
		return nil
	}
	return macro
}

// fetchResearchBatch covers the whole watchlist in one session. Total
// failure degrades to an empty mapping; ticker records keep their other
// payloads.
func (r *Runner) fetchResearchBatch(ctx context.Context, tickers []string) map[string]*types.Research {
	var results map[string]*types.Research
	err := session.With(ctx, r.provider, func(s interfaces.Session) error {
		batch, err := r.sources.Research.FetchBatch(ctx, s, tickers)
		if err != nil {
			return err
		}
		results = batch
		return nil
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Research batch fetch failed", err, "source", r.sources.Research.Name())
		return map[string]*types.Research{}
	}
	return results
}

// mergeResearch attaches batch research to the ticker records after the
// join point. Batch data wins over anything already present for a ticker.
func mergeResearch(ctx context.Context, records []*types.TickerRecord, research map[string]*types.Research) {
	for _, rec := range records {
		if res, ok := research[rec.Ticker]; ok {
			rec.VitalKnowledge = res
			logger.Info(ctx, "Merged batch research", "ticker", rec.Ticker, "headlines", len(res.Headlines))
		} else {
			logger.Warn(ctx, "No batch research for ticker", "ticker", rec.Ticker)
		}
	}
}
