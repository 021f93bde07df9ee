package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/types"
)

// Item is one ticker's report input. Quote is always present; everything
// else is optional.
type Item struct {
	Quote          *types.QuoteSnapshot
	Analysis       *types.AIAnalysis
	MarketWatch    *types.TopStories
	GoogleNews     *types.NewsStories
	VitalKnowledge *types.Research
}

// PrepareItems turns raw ticker records into report items. Tickers without
// a quote are dropped with a warning; a missing analysis is replaced with
// the empty fallback so the section still renders; optional payloads that
// carry no usable data are treated as absent.
func PrepareItems(ctx context.Context, records []*types.TickerRecord) []Item {
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		if rec.Quote == nil {
			logger.Warn(ctx, "Skipping ticker in report, no quote data", "ticker", rec.Ticker)
			continue
		}

		item := Item{Quote: rec.Quote, Analysis: rec.Analysis}
		if item.Analysis == nil {
			logger.Warn(ctx, "No analysis for ticker, using empty fallback", "ticker", rec.Ticker)
			item.Analysis = types.EmptyAnalysis(rec.Ticker)
		}

		if rec.MarketWatch != nil && len(rec.MarketWatch.Stories) > 0 {
			item.MarketWatch = rec.MarketWatch
		} else if rec.MarketWatch != nil {
			logger.Warn(ctx, "MarketWatch payload has no stories, omitting from report", "ticker", rec.Ticker)
		}

		if rec.GoogleNews != nil && len(rec.GoogleNews.Stories) > 0 {
			item.GoogleNews = rec.GoogleNews
		} else if rec.GoogleNews != nil {
			logger.Warn(ctx, "Google News payload has no stories, omitting from report", "ticker", rec.Ticker)
		}

		if rec.VitalKnowledge != nil && len(rec.VitalKnowledge.Headlines) > 0 {
			item.VitalKnowledge = rec.VitalKnowledge
		}

		if rec.Error != nil {
			logger.Info(ctx, "Ticker had source errors", "ticker", rec.Ticker, "errors", *rec.Error)
		}

		items = append(items, item)
	}
	return items
}

// WriteReport builds and writes the Markdown report. With no qualifying
// tickers it warns and writes nothing; snapshots for the day still exist.
func WriteReport(ctx context.Context, dir string, asOf time.Time, items []Item, macro *types.MacroSummary) (string, error) {
	if len(items) == 0 {
		logger.Warn(ctx, "No successful tickers to include in report")
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("morning_snapshot_%s.md", asOf.Format("2006-01-02")))
	md := Build(asOf, items, macro)
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	logger.Info(ctx, "Morning report written", "path", path, "tickers", len(items))
	return path, nil
}

// Build renders the Markdown report.
func Build(asOf time.Time, items []Item, macro *types.MacroSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Morning Snapshot — %s\n\n", asOf.Format("2006-01-02"))

	writeMacro(&b, macro)

	for _, item := range items {
		writeTicker(&b, item)
	}

	return b.String()
}

func writeMacro(b *strings.Builder, macro *types.MacroSummary) {
	if !macro.HasMorning() && !macro.HasMarketClose() {
		return
	}

	b.WriteString("## Macro Market News\n\n")

	if macro.HasMorning() {
		b.WriteString("### Morning Report")
		if macro.MorningDate != nil {
			fmt.Fprintf(b, " (%s)", *macro.MorningDate)
		}
		b.WriteString("\n\n")
		fmt.Fprintf(b, "%s\n\n", *macro.MorningSummary)
		writeBullets(b, macro.MorningBullets)
		if macro.MorningURL != nil {
			fmt.Fprintf(b, "[Source](%s)\n\n", *macro.MorningURL)
		}
	}

	if macro.HasMarketClose() {
		b.WriteString("### Market Close Report")
		if macro.MarketCloseDate != nil {
			fmt.Fprintf(b, " (%s)", *macro.MarketCloseDate)
		}
		b.WriteString("\n\n")
		fmt.Fprintf(b, "%s\n\n", *macro.MarketCloseSummary)
		writeBullets(b, macro.MarketCloseBullets)
		if macro.MarketCloseURL != nil {
			fmt.Fprintf(b, "[Source](%s)\n\n", *macro.MarketCloseURL)
		}
	}

	b.WriteString("---\n\n")
}

func writeTicker(b *strings.Builder, item Item) {
	q := item.Quote
	fmt.Fprintf(b, "## %s — $%.2f (%+.2f, %+.2f%%)\n\n", q.Ticker, q.Price, q.Change, q.ChangePercent)

	fmt.Fprintf(b, "- Previous close: $%.2f | Open: $%.2f\n", q.PreviousClose, q.Open)
	fmt.Fprintf(b, "- Day range: $%.2f – $%.2f | Volume: %d\n", q.DayLow, q.DayHigh, q.Volume)
	if q.MarketCap != nil {
		fmt.Fprintf(b, "- Market cap: %s\n", *q.MarketCap)
	}
	if q.EarningsDate != nil {
		fmt.Fprintf(b, "- Earnings: %s\n", *q.EarningsDate)
	}
	b.WriteString("\n")

	writeAnalysis(b, item.Analysis)

	if mw := item.MarketWatch; mw != nil {
		b.WriteString("### MarketWatch Top Stories\n\n")
		writeStories(b, mw.Stories)
	}

	if gn := item.GoogleNews; gn != nil {
		b.WriteString("### Google News\n\n")
		if gn.NewsSummary != nil {
			if gn.NewsSummary.OverallSentiment != nil {
				fmt.Fprintf(b, "Overall sentiment: **%s**\n\n", *gn.NewsSummary.OverallSentiment)
			}
			writeBullets(b, gn.NewsSummary.BulletPoints)
		}
		writeStories(b, gn.Stories)
	}

	if vk := item.VitalKnowledge; vk != nil {
		b.WriteString("### Vital Knowledge\n\n")
		if vk.Summary != nil {
			if vk.Summary.OverallSentiment != nil {
				fmt.Fprintf(b, "Overall sentiment: **%s**", *vk.Summary.OverallSentiment)
				if len(vk.Summary.KeyThemes) > 0 {
					fmt.Fprintf(b, " (%s)", strings.Join(vk.Summary.KeyThemes, ", "))
				}
				b.WriteString("\n\n")
			}
			if vk.Summary.Summary != nil {
				fmt.Fprintf(b, "%s\n\n", *vk.Summary.Summary)
			}
		}
		for _, h := range vk.Headlines {
			fmt.Fprintf(b, "- %s\n", h.Headline)
		}
		b.WriteString("\n")
		if len(vk.ReportDates) > 0 {
			fmt.Fprintf(b, "_Reports: %s_\n\n", strings.Join(vk.ReportDates, ", "))
		}
	}

	b.WriteString("---\n\n")
}

func writeAnalysis(b *strings.Builder, a *types.AIAnalysis) {
	b.WriteString("### Analysis\n\n")
	if a.Title == nil && a.Summary == nil && len(a.Bullets) == 0 {
		b.WriteString("_No analysis available._\n\n")
		return
	}
	if a.Title != nil {
		fmt.Fprintf(b, "**%s**\n\n", *a.Title)
	}
	if a.Summary != nil {
		fmt.Fprintf(b, "%s\n\n", *a.Summary)
	}
	writeBullets(b, a.Bullets)
}

func writeStories(b *strings.Builder, stories []types.Story) {
	for _, s := range stories {
		fmt.Fprintf(b, "- [%s](%s)", s.Headline, s.URL)
		var meta []string
		if s.Source != nil {
			meta = append(meta, *s.Source)
		}
		if s.Age != nil {
			meta = append(meta, *s.Age)
		}
		if len(meta) > 0 {
			fmt.Fprintf(b, " — %s", strings.Join(meta, ", "))
		}
		b.WriteString("\n")
		if s.Summary != nil {
			fmt.Fprintf(b, "  %s", *s.Summary)
			if s.Sentiment != nil {
				fmt.Fprintf(b, " _(%s)_", *s.Sentiment)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

func writeBullets(b *strings.Builder, bullets []string) {
	if len(bullets) == 0 {
		return
	}
	for _, bullet := range bullets {
		fmt.Fprintf(b, "- %s\n", bullet)
	}
	b.WriteString("\n")
}
