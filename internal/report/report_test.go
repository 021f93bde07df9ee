package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"morning-snapshot/internal/types"
)

func quoteFor(ticker string) *types.QuoteSnapshot {
	return &types.QuoteSnapshot{
		Ticker: ticker, Price: 150.25, Change: 1.5, ChangePercent: 1.01,
		PreviousClose: 148.75, Open: 149.0, DayLow: 148.5, DayHigh: 151.0, Volume: 1000000,
	}
}

func TestPrepareItemsQuoteFilter(t *testing.T) {
	records := []*types.TickerRecord{
		{Ticker: "AAPL", Quote: quoteFor("AAPL")},
		{Ticker: "GOOGL"}, // no quote, must be dropped
	}

	items := PrepareItems(context.Background(), records)
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Quote.Ticker != "AAPL" {
		t.Errorf("Expected AAPL, got %s", items[0].Quote.Ticker)
	}
}

func TestPrepareItemsAnalysisFallback(t *testing.T) {
	records := []*types.TickerRecord{{Ticker: "AAPL", Quote: quoteFor("AAPL")}}

	items := PrepareItems(context.Background(), records)
	a := items[0].Analysis
	if a == nil {
		t.Fatal("Expected fallback analysis")
	}
	if a.Ticker != "AAPL" || a.Title != nil || a.Summary != nil || len(a.Bullets) != 0 {
		t.Errorf("Unexpected fallback analysis %+v", a)
	}
}

func TestPrepareItemsEmptyPayloadsOmitted(t *testing.T) {
	records := []*types.TickerRecord{{
		Ticker:      "AAPL",
		Quote:       quoteFor("AAPL"),
		MarketWatch: &types.TopStories{Ticker: "AAPL"},
		GoogleNews:  &types.NewsStories{Ticker: "AAPL"},
	}}

	items := PrepareItems(context.Background(), records)
	if items[0].MarketWatch != nil {
		t.Error("Expected empty MarketWatch payload to be omitted")
	}
	if items[0].GoogleNews != nil {
		t.Error("Expected empty Google News payload to be omitted")
	}
}

func TestBuildReportContent(t *testing.T) {
	items := []Item{{
		Quote:    quoteFor("AAPL"),
		Analysis: types.EmptyAnalysis("AAPL"),
		GoogleNews: &types.NewsStories{
			Ticker: "AAPL",
			Stories: []types.Story{{
				Headline: "Apple unveils new chip",
				URL:      "https://example.com/chip",
				Summary:  types.StringPtr("New silicon announced."),
			}},
			NewsSummary: &types.NewsSummary{
				OverallSentiment: types.StringPtr("bullish"),
				BulletPoints:     []string{"Chip launch well received"},
			},
		},
	}}
	macro := &types.MacroSummary{
		MorningSummary: types.StringPtr("Futures higher."),
		MorningBullets: []string{"S&P futures +0.5%"},
	}

	md := Build(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), items, macro)

	for _, want := range []string{
		"# Morning Snapshot",
		"2026-08-31",
		"## Macro Market News",
		"Futures higher.",
		"## AAPL",
		"$150.25",
		"_No analysis available._",
		"Apple unveils new chip",
		"**bullish**",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestBuildReportWithoutMacro(t *testing.T) {
	items := []Item{{Quote: quoteFor("AAPL"), Analysis: types.EmptyAnalysis("AAPL")}}

	md := Build(time.Now(), items, nil)
	if strings.Contains(md, "Macro Market News") {
		t.Error("Expected no macro section without macro data")
	}
}

func TestWriteReportZeroTickers(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteReport(context.Background(), dir, time.Now(), nil, nil)
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if path != "" {
		t.Error("Expected no report path with zero qualifying tickers")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected no files written, found %d", len(entries))
	}
}

func TestWriteSnapshots(t *testing.T) {
	dir := t.TempDir()
	asOf := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	records := []*types.TickerRecord{
		{Ticker: "AAPL", Quote: quoteFor("AAPL")},
		{Ticker: "GOOGL"},
	}
	macro := &types.MacroSummary{MorningSummary: types.StringPtr("Calm open.")}

	if err := WriteSnapshots(context.Background(), dir, asOf, records, macro, true); err != nil {
		t.Fatalf("WriteSnapshots failed: %v", err)
	}

	for _, name := range []string{
		"quote_snapshot_2026-08-31.json",
		"analysis_snapshot_2026-08-31.json",
		"marketwatch_snapshot_2026-08-31.json",
		"googlenews_snapshot_2026-08-31.json",
		"vital_knowledge_snapshot_2026-08-31.json",
		"macro_news_snapshot_2026-08-31.json",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected snapshot %s: %v", name, err)
		}
	}

	// Absent payloads serialize as explicit nulls.
	b, err := os.ReadFile(filepath.Join(dir, "quote_snapshot_2026-08-31.json"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(b)
	if !strings.Contains(content, `"as_of": "2026-08-31"`) {
		t.Error("Expected as_of date in snapshot")
	}
	if !strings.Contains(content, `"quote": null`) {
		t.Error("Expected explicit null quote for failed ticker")
	}
}

func TestWriteSnapshotsIdempotent(t *testing.T) {
	dir := t.TempDir()
	asOf := time.Now()

	first := []*types.TickerRecord{{Ticker: "AAPL"}}
	if err := WriteSnapshots(context.Background(), dir, asOf, first, nil, false); err != nil {
		t.Fatal(err)
	}

	second := []*types.TickerRecord{{Ticker: "AAPL", Quote: quoteFor("AAPL")}}
	if err := WriteSnapshots(context.Background(), dir, asOf, second, nil, false); err != nil {
		t.Fatal(err)
	}

	name := "quote_snapshot_" + asOf.Format("2006-01-02") + ".json"
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "150.25") {
		t.Error("Expected rerun to overwrite the day's snapshot")
	}

	// Macro disabled: no macro snapshot file.
	macroName := "macro_news_snapshot_" + asOf.Format("2006-01-02") + ".json"
	if _, err := os.Stat(filepath.Join(dir, macroName)); err == nil {
		t.Error("Expected no macro snapshot when macro is disabled")
	}
}
