package yahoo

import (
	"context"
	"fmt"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/types"
)

// AnalysisSource extracts the AI-generated analysis section from a ticker's
// Yahoo Finance page.
type AnalysisSource struct {
	extractor interfaces.Extractor
}

var _ interfaces.AnalysisSource = (*AnalysisSource)(nil)

func NewAnalysisSource(extractor interfaces.Extractor) *AnalysisSource {
	return &AnalysisSource{extractor: extractor}
}

func (a *AnalysisSource) Name() string { return "YahooAI" }

func (a *AnalysisSource) Fetch(ctx context.Context, s interfaces.Session, ticker string) (*types.AIAnalysis, error) {
	ticker = types.NormalizeTicker(ticker)
	url := fmt.Sprintf("https://finance.yahoo.com/quote/%s/news", ticker)

	logger.Debug(ctx, "Loading Yahoo news page", "ticker", ticker, "url", url)
	if err := s.Goto(ctx, url); err != nil {
		return nil, fmt.Errorf("load news page: %w", err)
	}

	text, err := s.Text()
	if err != nil {
		return nil, fmt.Errorf("read news page: %w", err)
	}

	instruction := fmt.Sprintf(`Read this Yahoo Finance page for %s stock and its recent news.

Summarize what is currently driving the stock:
- ticker: the stock symbol
- title: a short headline for the analysis, or null
- summary: a 2-3 sentence analysis of why the stock is moving, or null
- bullets: 3-5 concise bullet points of the key drivers`, ticker)

	var analysis types.AIAnalysis
	if err := a.extractor.Extract(ctx, instruction, text, &analysis); err != nil {
		return nil, fmt.Errorf("extract analysis: %w", err)
	}
	if analysis.Summary == nil && len(analysis.Bullets) == 0 {
		return nil, fmt.Errorf("extracted analysis for %s is empty", ticker)
	}

	analysis.Ticker = ticker
	return &analysis, nil
}
