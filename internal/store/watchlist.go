package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"morning-snapshot/internal/types"
)

var defaultWatchlist = []string{"AAPL", "GOOGL"}

// LoadWatchlist resolves the run's ticker list. Precedence: the JSON file at
// cfg.WatchlistPath, then the inline config watchlist, then a built-in
// default. A present but unreadable file is an error; a missing file is not.
func LoadWatchlist(cfg *Config) ([]string, error) {
	b, err := os.ReadFile(cfg.WatchlistPath)
	if err == nil {
		var tickers []string
		if err := json.Unmarshal(b, &tickers); err != nil {
			return nil, err
		}
		if len(tickers) > 0 {
			return normalize(tickers), nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if len(cfg.Watchlist) > 0 {
		return normalize(cfg.Watchlist), nil
	}
	return normalize(defaultWatchlist), nil
}

func normalize(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		n := types.NormalizeTicker(t)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
