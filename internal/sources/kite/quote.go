// Package kite fetches quotes from the Zerodha Kite Connect API instead of
// scraping a quote page. Useful for NSE/BSE watchlists where an API key is
// available and web quotes are unreliable.
package kite

import (
	"context"
	"errors"
	"fmt"
	"os"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/types"
)

// QuoteSource pulls quote data over the broker API. The session argument is
// ignored; no browsing is involved, but the call still runs under the same
// per-ticker gate as the web connector.
type QuoteSource struct {
	kc       *kiteconnect.Client
	exchange string
}

var _ interfaces.QuoteSource = (*QuoteSource)(nil)

func NewQuoteSource() (*QuoteSource, error) {
	apiKey := os.Getenv("KITE_API_KEY")
	accessToken := os.Getenv("KITE_ACCESS_TOKEN")
	if apiKey == "" || accessToken == "" {
		return nil, errors.New("KITE_API_KEY or KITE_ACCESS_TOKEN missing")
	}

	exchange := os.Getenv("KITE_EXCHANGE")
	if exchange == "" {
		exchange = "NSE"
	}

	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return &QuoteSource{kc: kc, exchange: exchange}, nil
}

func (q *QuoteSource) Name() string { return "KiteQuote" }

func (q *QuoteSource) Fetch(ctx context.Context, _ interfaces.Session, ticker string) (*types.QuoteSnapshot, error) {
	ticker = types.NormalizeTicker(ticker)
	instrument := q.exchange + ":" + ticker

	logger.Debug(ctx, "Fetching Kite quote", "instrument", instrument)
	quotes, err := q.kc.GetQuote(instrument)
	if err != nil {
		return nil, fmt.Errorf("kite quote %s: %w", instrument, err)
	}

	data, ok := quotes[instrument]
	if !ok {
		return nil, fmt.Errorf("kite returned no data for %s", instrument)
	}
	if data.LastPrice <= 0 {
		return nil, fmt.Errorf("kite quote for %s has no price", instrument)
	}

	changePercent := 0.0
	if data.OHLC.Close > 0 {
		changePercent = data.NetChange / data.OHLC.Close * 100
	}

	return &types.QuoteSnapshot{
		Ticker:        ticker,
		Price:         data.LastPrice,
		Change:        data.NetChange,
		ChangePercent: changePercent,
		PreviousClose: data.OHLC.Close,
		Open:          data.OHLC.Open,
		DayLow:        data.OHLC.Low,
		DayHigh:       data.OHLC.High,
		Volume:        int64(data.Volume),
	}, nil
}
