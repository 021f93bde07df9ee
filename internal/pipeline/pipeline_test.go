package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/types"
)

type fakeSession struct{}

func (f *fakeSession) Goto(ctx context.Context, url string) error { return nil }
func (f *fakeSession) SubmitForm(ctx context.Context, url string, fields map[string]string) error {
	return nil
}
func (f *fakeSession) Document() (*goquery.Document, error) { return nil, errors.New("no page") }
func (f *fakeSession) Text() (string, error)                { return "", nil }
func (f *fakeSession) CurrentURL() string                   { return "" }

type fakeProvider struct {
	mu       sync.Mutex
	acquired int
	released int
}

func (f *fakeProvider) Acquire(ctx context.Context) (interfaces.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquired++
	return &fakeSession{}, nil
}

func (f *fakeProvider) Release(s interfaces.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return nil
}

func (f *fakeProvider) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acquired, f.released
}

type fakeQuoteSource struct {
	fail    map[string]bool
	delay   time.Duration
	onFetch func(ticker string)

	current atomic.Int64
	peak    atomic.Int64
}

func (f *fakeQuoteSource) Name() string { return "YahooQuote" }

func (f *fakeQuoteSource) Fetch(ctx context.Context, s interfaces.Session, ticker string) (*types.QuoteSnapshot, error) {
	cur := f.current.Add(1)
	for {
		peak := f.peak.Load()
		if cur <= peak || f.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	defer f.current.Add(-1)

	if f.onFetch != nil {
		f.onFetch(ticker)
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[ticker] {
		return nil, fmt.Errorf("quote page unavailable for %s", ticker)
	}
	return &types.QuoteSnapshot{Ticker: ticker, Price: 100}, nil
}

type fakeAnalysisSource struct {
	fail map[string]bool
}

func (f *fakeAnalysisSource) Name() string { return "YahooAI" }

func (f *fakeAnalysisSource) Fetch(ctx context.Context, s interfaces.Session, ticker string) (*types.AIAnalysis, error) {
	if f.fail[ticker] {
		return nil, errors.New("analysis unavailable")
	}
	return &types.AIAnalysis{Ticker: ticker, Summary: types.StringPtr("steady")}, nil
}

type fakeResearchSource struct {
	batchErr error
	results  map[string]*types.Research
}

func (f *fakeResearchSource) Name() string { return "VitalKnowledge" }

func (f *fakeResearchSource) Fetch(ctx context.Context, s interfaces.Session, ticker string) (*types.Research, error) {
	return f.results[ticker], nil
}

func (f *fakeResearchSource) FetchBatch(ctx context.Context, s interfaces.Session, tickers []string) (map[string]*types.Research, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	return f.results, nil
}

type fakeMacroSource struct {
	err    error
	result *types.MacroSummary
	done   chan struct{}
}

func (f *fakeMacroSource) Name() string { return "MacroNews" }

func (f *fakeMacroSource) Fetch(ctx context.Context, s interfaces.Session) (*types.MacroSummary, error) {
	if f.done != nil {
		defer close(f.done)
	}
	return f.result, f.err
}

func TestRunPreservesWatchlistOrder(t *testing.T) {
	tickers := []string{"AAPL", "GOOGL", "MSFT", "NVDA", "AMZN", "META"}

	// Later tickers finish first, so completion order inverts input order.
	delays := map[string]time.Duration{}
	for i, ticker := range tickers {
		delays[ticker] = time.Duration(len(tickers)-i) * 5 * time.Millisecond
	}
	quote := &fakeQuoteSource{onFetch: func(ticker string) { time.Sleep(delays[ticker]) }}

	runner := NewRunner(&fakeProvider{}, Sources{Quote: quote}, 4)
	result, err := runner.Run(context.Background(), tickers)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Records) != len(tickers) {
		t.Fatalf("Expected %d records, got %d", len(tickers), len(result.Records))
	}
	for i, ticker := range tickers {
		if result.Records[i].Ticker != ticker {
			t.Errorf("Record %d: expected %s, got %s", i, ticker, result.Records[i].Ticker)
		}
	}
}

func TestConcurrencyCeiling(t *testing.T) {
	tickers := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	quote := &fakeQuoteSource{delay: 10 * time.Millisecond}

	runner := NewRunner(&fakeProvider{}, Sources{Quote: quote}, 2)
	if _, err := runner.Run(context.Background(), tickers); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if peak := quote.peak.Load(); peak > 2 {
		t.Errorf("Concurrency ceiling exceeded: peak %d > 2", peak)
	}
}

func TestSourceFailureIsolation(t *testing.T) {
	tickers := []string{"AAPL", "GOOGL"}
	quote := &fakeQuoteSource{fail: map[string]bool{"AAPL": true}}
	analysis := &fakeAnalysisSource{}

	runner := NewRunner(&fakeProvider{}, Sources{Quote: quote, Analysis: analysis}, 2)
	result, err := runner.Run(context.Background(), tickers)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	aapl := result.Records[0]
	if aapl.Quote != nil {
		t.Error("Expected no quote for AAPL")
	}
	if aapl.Analysis == nil {
		t.Error("Expected analysis for AAPL despite quote failure")
	}
	if aapl.Error == nil || *aapl.Error != "YahooQuote failed" {
		t.Errorf("Expected error 'YahooQuote failed', got %v", aapl.Error)
	}

	googl := result.Records[1]
	if googl.Quote == nil || googl.Analysis == nil {
		t.Error("Expected full payloads for GOOGL")
	}
	if googl.Error != nil {
		t.Errorf("Expected no error for GOOGL, got %v", *googl.Error)
	}
}

func TestMultipleFailuresAccumulate(t *testing.T) {
	quote := &fakeQuoteSource{fail: map[string]bool{"AAPL": true}}
	analysis := &fakeAnalysisSource{fail: map[string]bool{"AAPL": true}}

	runner := NewRunner(&fakeProvider{}, Sources{Quote: quote, Analysis: analysis}, 1)
	result, err := runner.Run(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rec := result.Records[0]
	if rec.Error == nil || *rec.Error != "YahooQuote failed; YahooAI failed" {
		t.Errorf("Expected joined errors, got %v", rec.Error)
	}
}

func TestBatchResearchMerge(t *testing.T) {
	research := &fakeResearchSource{
		results: map[string]*types.Research{
			"AAPL": {Ticker: "AAPL", Headlines: []types.Headline{{Headline: "Supply chain update"}}},
		},
	}

	runner := NewRunner(&fakeProvider{}, Sources{Quote: &fakeQuoteSource{}, Research: research}, 2)
	result, err := runner.Run(context.Background(), []string{"AAPL", "GOOGL"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Records[0].VitalKnowledge == nil {
		t.Error("Expected research merged for AAPL")
	}
	if result.Records[1].VitalKnowledge != nil {
		t.Error("Expected no research for GOOGL")
	}
	// A research gap is not a source failure.
	if result.Records[1].Error != nil {
		t.Errorf("Expected no error for GOOGL, got %v", *result.Records[1].Error)
	}
}

func TestBatchResearchTotalFailure(t *testing.T) {
	research := &fakeResearchSource{batchErr: errors.New("login rejected")}

	runner := NewRunner(&fakeProvider{}, Sources{Quote: &fakeQuoteSource{}, Research: research}, 2)
	result, err := runner.Run(context.Background(), []string{"AAPL", "GOOGL"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, rec := range result.Records {
		if rec.VitalKnowledge != nil {
			t.Errorf("Expected no research for %s", rec.Ticker)
		}
		if rec.Quote == nil {
			t.Errorf("Expected quote retained for %s", rec.Ticker)
		}
	}
}

func TestMacroResult(t *testing.T) {
	macro := &fakeMacroSource{result: &types.MacroSummary{MorningSummary: types.StringPtr("Futures up.")}}

	runner := NewRunner(&fakeProvider{}, Sources{Quote: &fakeQuoteSource{}, Macro: macro}, 2)
	result, err := runner.Run(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Macro == nil || !result.Macro.HasMorning() {
		t.Error("Expected macro summary in result")
	}
}

func TestMacroFailureDoesNotAffectTickers(t *testing.T) {
	macro := &fakeMacroSource{err: errors.New("site down")}

	runner := NewRunner(&fakeProvider{}, Sources{Quote: &fakeQuoteSource{}, Macro: macro}, 2)
	result, err := runner.Run(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Macro != nil {
		t.Error("Expected nil macro after failure")
	}
	if result.Records[0].Quote == nil || result.Records[0].Error != nil {
		t.Error("Expected ticker untouched by macro failure")
	}
}

// The macro task must not wait on the ticker gate: with a gate of one and
// the only ticker task blocking until macro finishes, a gated macro task
// would deadlock.
func TestMacroRunsOutsideGate(t *testing.T) {
	macroDone := make(chan struct{})
	macro := &fakeMacroSource{
		result: &types.MacroSummary{MorningSummary: types.StringPtr("ok")},
		done:   macroDone,
	}
	quote := &fakeQuoteSource{onFetch: func(string) { <-macroDone }}

	runner := NewRunner(&fakeProvider{}, Sources{Quote: quote, Macro: macro}, 1)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		if _, err := runner.Run(context.Background(), []string{"AAPL"}); err != nil {
			t.Errorf("Run failed: %v", err)
		}
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Run deadlocked: macro task appears to be gated")
	}
}

func TestEverySessionReleased(t *testing.T) {
	provider := &fakeProvider{}
	runner := NewRunner(provider, Sources{
		Quote:    &fakeQuoteSource{fail: map[string]bool{"GOOGL": true}},
		Analysis: &fakeAnalysisSource{},
		Research: &fakeResearchSource{results: map[string]*types.Research{}},
		Macro:    &fakeMacroSource{result: &types.MacroSummary{}, err: errors.New("down")},
	}, 2)

	if _, err := runner.Run(context.Background(), []string{"AAPL", "GOOGL"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	acquired, released := provider.counts()
	if acquired == 0 {
		t.Fatal("Expected sessions to be acquired")
	}
	if acquired != released {
		t.Errorf("Session leak: %d acquired, %d released", acquired, released)
	}
}

func TestQuotesSucceedAnalysisAlwaysFails(t *testing.T) {
	quote := &fakeQuoteSource{}
	analysis := &fakeAnalysisSource{fail: map[string]bool{"AAA": true, "BBB": true}}

	runner := NewRunner(&fakeProvider{}, Sources{Quote: quote, Analysis: analysis}, 1)
	result, err := runner.Run(context.Background(), []string{"AAA", "BBB"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, rec := range result.Records {
		if rec.Quote == nil {
			t.Errorf("Expected quote for %s", rec.Ticker)
		}
		if rec.Analysis != nil {
			t.Errorf("Expected no analysis for %s", rec.Ticker)
		}
		if rec.Error == nil || *rec.Error != "YahooAI failed" {
			t.Errorf("Expected recorded analysis failure for %s, got %v", rec.Ticker, rec.Error)
		}
	}
}

func TestCanceledRunStillReturnsRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(&fakeProvider{}, Sources{Quote: &fakeQuoteSource{}}, 1)
	result, err := runner.Run(ctx, []string{"AAPL", "GOOGL"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(result.Records))
	}
	for _, rec := range result.Records {
		if rec.Error == nil {
			t.Errorf("Expected cancellation error recorded for %s", rec.Ticker)
		}
	}
}
