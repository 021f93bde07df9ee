package vitalknowledge

import (
	"context"
	"fmt"
	"strings"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/types"
)

const maxBullets = 5

// ResearchSource extracts ticker-specific bullets from the morning and
// market close reports. The batch path logs in once and opens each report
// once for the whole watchlist.
type ResearchSource struct {
	extractor interfaces.Extractor
}

var _ interfaces.ResearchSource = (*ResearchSource)(nil)

func NewResearchSource(extractor interfaces.Extractor) *ResearchSource {
	return &ResearchSource{extractor: extractor}
}

func (r *ResearchSource) Name() string { return "VitalKnowledge" }

func (r *ResearchSource) Fetch(ctx context.Context, s interfaces.Session, ticker string) (*types.Research, error) {
	results, err := r.FetchBatch(ctx, s, []string{ticker})
	if err != nil {
		return nil, err
	}
	result, ok := results[types.NormalizeTicker(ticker)]
	if !ok {
		return nil, fmt.Errorf("no research produced for %s", ticker)
	}
	return result, nil
}

// extractedBullets is the per-report, per-ticker extraction shape.
type extractedBullets struct {
	Bullets []string `json:"bullets"`
}

// rankedBullets is the importance-sorted combination of both reports.
type rankedBullets struct {
	TopBullets []string `json:"topBullets"`
}

func (r *ResearchSource) FetchBatch(ctx context.Context, s interfaces.Session, tickers []string) (map[string]*types.Research, error) {
	logger.Info(ctx, "Starting Vital Knowledge batch fetch", "tickers", len(tickers))

	if err := login(ctx, s); err != nil {
		return nil, err
	}

	type reportBullets struct {
		bullets map[string][]string
		date    string
	}

	// Each report is opened once and read for every ticker.
	readReport := func(category string) (*reportBullets, error) {
		date, _, err := openLatestReport(ctx, s, category)
		if err != nil {
			return nil, err
		}
		text, err := s.Text()
		if err != nil {
			return nil, fmt.Errorf("read %s report: %w", category, err)
		}

		rb := &reportBullets{bullets: make(map[string][]string), date: date}
		for _, ticker := range tickers {
			ticker = types.NormalizeTicker(ticker)
			bullets, err := r.extractTickerBullets(ctx, ticker, category, text)
			if err != nil {
				logger.Warn(ctx, "Ticker extraction failed for report",
					"ticker", ticker, "category", category, "error", err)
				continue
			}
			rb.bullets[ticker] = bullets
			logger.Debug(ctx, "Extracted report bullets",
				"ticker", ticker, "category", category, "bullets", len(bullets))
		}
		return rb, nil
	}

	morning, err := readReport(categoryMorning)
	if err != nil {
		return nil, err
	}
	marketClose, err := readReport(categoryMarketClose)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*types.Research, len(tickers))
	for _, ticker := range tickers {
		ticker = types.NormalizeTicker(ticker)
		all := append(append([]string{}, morning.bullets[ticker]...), marketClose.bullets[ticker]...)

		final := all
		if len(all) > 0 {
			if ranked, err := r.rankBullets(ctx, ticker, all); err != nil {
				logger.Warn(ctx, "Bullet ranking failed, keeping original order",
					"ticker", ticker, "error", err)
				if len(final) > maxBullets {
					final = final[:maxBullets]
				}
			} else {
				final = ranked
			}
		}

		headlines := make([]types.Headline, 0, len(final))
		for _, bullet := range final {
			headlines = append(headlines, types.Headline{Headline: bullet})
		}

		var summary *types.ResearchSummary
		if len(final) > 0 {
			if sum, err := r.summarize(ctx, ticker, final); err != nil {
				logger.Warn(ctx, "Research summary failed", "ticker", ticker, "error", err)
			} else {
				summary = sum
			}
		}

		results[ticker] = &types.Research{
			Ticker:      ticker,
			Headlines:   headlines,
			ReportDates: []string{morning.date, marketClose.date},
			Summary:     summary,
		}
		logger.Info(ctx, "Vital Knowledge research complete", "ticker", ticker, "headlines", len(headlines))
	}

	return results, nil
}

func (r *ResearchSource) extractTickerBullets(ctx context.Context, ticker, category, text string) ([]string, error) {
	instruction := fmt.Sprintf(`Read through this Vital Knowledge %s report.

Extract ONLY news that specifically impacts %s stock.

Return up to %d bullet points about %s as {"bullets":[...]}. Each bullet should be:
- specific to %s, not general market news
- concise but informative (1-2 sentences)
- focused on what is driving %s stock movement

If there is no news about %s in this report, return {"bullets":[]}.`,
		category, ticker, maxBullets, ticker, ticker, ticker, ticker)

	var extracted extractedBullets
	if err := r.extractor.Extract(ctx, instruction, text, &extracted); err != nil {
		return nil, err
	}
	return extracted.Bullets, nil
}

func (r *ResearchSource) rankBullets(ctx context.Context, ticker string, bullets []string) ([]string, error) {
	instruction := fmt.Sprintf(`You have %d bullet points about %s stock from morning and market close reports:

%s

Sort these by importance (most market-moving first) and return the top %d as {"topBullets":[...]}.
If there are fewer than %d, return all of them.`,
		len(bullets), ticker, bulletList(bullets), maxBullets, maxBullets)

	var ranked rankedBullets
	if err := r.extractor.Extract(ctx, instruction, "", &ranked); err != nil {
		return nil, err
	}
	if len(ranked.TopBullets) > maxBullets {
		ranked.TopBullets = ranked.TopBullets[:maxBullets]
	}
	return ranked.TopBullets, nil
}

func (r *ResearchSource) summarize(ctx context.Context, ticker string, bullets []string) (*types.ResearchSummary, error) {
	instruction := fmt.Sprintf(`Based on these Vital Knowledge bullets about %s:

%s

Provide:
- overall_sentiment: exactly one of "bullish", "bearish", "mixed" or "neutral"
- key_themes: 2-3 main themes (e.g. ["earnings", "analyst upgrade"])
- summary: a very brief 1-2 sentence summary of the key points about %s`,
		ticker, bulletList(bullets), ticker)

	var summary types.ResearchSummary
	if err := r.extractor.Extract(ctx, instruction, "", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func bulletList(bullets []string) string {
	lines := make([]string, len(bullets))
	for i, b := range bullets {
		lines[i] = "- " + b
	}
	return strings.Join(lines, "\n")
}
