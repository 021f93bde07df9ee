// Package yahoo fetches quote and analysis data from Yahoo Finance quote
// pages.
package yahoo

import (
	"context"
	"fmt"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/types"
)

// QuoteSource extracts the market quote from a ticker's Yahoo Finance page.
type QuoteSource struct {
	extractor interfaces.Extractor
}

var _ interfaces.QuoteSource = (*QuoteSource)(nil)

func NewQuoteSource(extractor interfaces.Extractor) *QuoteSource {
	return &QuoteSource{extractor: extractor}
}

func (q *QuoteSource) Name() string { return "YahooQuote" }

func (q *QuoteSource) Fetch(ctx context.Context, s interfaces.Session, ticker string) (*types.QuoteSnapshot, error) {
	ticker = types.NormalizeTicker(ticker)
	url := fmt.Sprintf("https://finance.yahoo.com/quote/%s", ticker)

	logger.Debug(ctx, "Loading Yahoo quote page", "ticker", ticker, "url", url)
	if err := s.Goto(ctx, url); err != nil {
		return nil, fmt.Errorf("load quote page: %w", err)
	}

	text, err := s.Text()
	if err != nil {
		return nil, fmt.Errorf("read quote page: %w", err)
	}

	instruction := fmt.Sprintf(`Read this Yahoo Finance quote page for %s stock.

Extract the current quote data:
- ticker: the stock symbol
- price: current/last price as a number
- change: price change from previous close as a number
- change_percent: percent change as a number (e.g. -1.25 for -1.25%%)
- previous_close: previous closing price
- open: today's opening price
- day_low and day_high: today's trading range
- volume: trading volume as an integer
- market_cap: market cap as displayed (e.g. "2.95T"), or null
- earnings_date: upcoming earnings date as displayed, or null`, ticker)

	var quote types.QuoteSnapshot
	if err := q.extractor.Extract(ctx, instruction, text, &quote); err != nil {
		return nil, fmt.Errorf("extract quote: %w", err)
	}
	if quote.Price <= 0 {
		return nil, fmt.Errorf("extracted quote for %s has no price", ticker)
	}

	quote.Ticker = ticker
	return &quote, nil
}
