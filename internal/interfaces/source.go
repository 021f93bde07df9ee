package interfaces

import (
	"context"

	"morning-snapshot/internal/types"
)

// QuoteSource fetches market quote data for one ticker.
type QuoteSource interface {
	// Name identifies the source in logs and error strings.
	Name() string

	// Fetch retrieves the quote for one ticker using the given session.
	Fetch(ctx context.Context, s Session, ticker string) (*types.QuoteSnapshot, error)
}

// AnalysisSource fetches the secondary AI analysis for one ticker.
type AnalysisSource interface {
	Name() string
	Fetch(ctx context.Context, s Session, ticker string) (*types.AIAnalysis, error)
}

// StoriesSource fetches top story cards for one ticker.
type StoriesSource interface {
	Name() string
	Fetch(ctx context.Context, s Session, ticker string) (*types.TopStories, error)
}

// NewsSource fetches recent news stories with per-article summaries for one ticker.
type NewsSource interface {
	Name() string
	Fetch(ctx context.Context, s Session, ticker string) (*types.NewsStories, error)
}

// ResearchSource fetches premium research headlines. FetchBatch covers all
// tickers in one session (single login, each report opened once) and returns
// a mapping keyed by normalized ticker; tickers with no relevant research
// are simply absent from the mapping.
type ResearchSource interface {
	Name() string
	Fetch(ctx context.Context, s Session, ticker string) (*types.Research, error)
	FetchBatch(ctx context.Context, s Session, tickers []string) (map[string]*types.Research, error)
}

// MacroSource fetches the ticker-independent macro news summary.
type MacroSource interface {
	Name() string
	Fetch(ctx context.Context, s Session) (*types.MacroSummary, error)
}
