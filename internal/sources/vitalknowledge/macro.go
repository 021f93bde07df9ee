package vitalknowledge

import (
	"context"
	"errors"
	"fmt"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/types"
)

// MacroSource extracts the market-wide macro summary from the morning and
// market close reports. It is ticker-independent and runs once per day.
type MacroSource struct {
	extractor interfaces.Extractor
}

var _ interfaces.MacroSource = (*MacroSource)(nil)

func NewMacroSource(extractor interfaces.Extractor) *MacroSource {
	return &MacroSource{extractor: extractor}
}

func (m *MacroSource) Name() string { return "MacroNews" }

// macroExtract is the per-report extraction shape.
type macroExtract struct {
	Summary string   `json:"summary"`
	Bullets []string `json:"bullets"`
}

func (m *MacroSource) Fetch(ctx context.Context, s interfaces.Session) (*types.MacroSummary, error) {
	logger.Info(ctx, "Starting macro news fetch")

	if err := login(ctx, s); err != nil {
		return nil, err
	}

	result := &types.MacroSummary{}

	// A failed section is logged and left null; the fetch only fails when
	// neither report produced anything.
	if err := m.readReport(ctx, s, categoryMorning, func(date, url string, ex *macroExtract) {
		result.MorningDate = types.StringPtr(date)
		result.MorningURL = types.StringPtr(url)
		result.MorningSummary = types.StringPtr(ex.Summary)
		result.MorningBullets = ex.Bullets
	}); err != nil {
		logger.Warn(ctx, "Morning macro extraction failed", "error", err)
	}

	if err := m.readReport(ctx, s, categoryMarketClose, func(date, url string, ex *macroExtract) {
		result.MarketCloseDate = types.StringPtr(date)
		result.MarketCloseURL = types.StringPtr(url)
		result.MarketCloseSummary = types.StringPtr(ex.Summary)
		result.MarketCloseBullets = ex.Bullets
	}); err != nil {
		logger.Warn(ctx, "Market close macro extraction failed", "error", err)
	}

	if !result.HasMorning() && !result.HasMarketClose() {
		return nil, errors.New("no macro news extracted from either report")
	}

	logger.Info(ctx, "Macro news fetch complete",
		"morning", result.HasMorning(), "market_close", result.HasMarketClose())
	return result, nil
}

func (m *MacroSource) readReport(ctx context.Context, s interfaces.Session, category string, apply func(date, url string, ex *macroExtract)) error {
	date, url, err := openLatestReport(ctx, s, category)
	if err != nil {
		return err
	}
	text, err := s.Text()
	if err != nil {
		return fmt.Errorf("read %s report: %w", category, err)
	}

	instruction := fmt.Sprintf(`Read through this Vital Knowledge %s report.

Extract the MACRO MARKET MOVING NEWS.

Focus on:
- major market movements and trends (use percentages for market moves)
- key economic indicators and data releases
- central bank actions or policy updates
- geopolitical events affecting markets
- major sector movements and why
- market sentiment and outlook and why

Provide:
- summary: a 2-3 sentence summary of the macro market environment and key moving forces
- bullets: exactly 4-5 detailed bullet points of what is driving market moves. Each bullet should be specific with numbers, percentages and concrete details where mentioned.`, category)

	var extracted macroExtract
	if err := m.extractor.Extract(ctx, instruction, text, &extracted); err != nil {
		return fmt.Errorf("extract %s macro news: %w", category, err)
	}
	if extracted.Summary == "" {
		return fmt.Errorf("%s report produced no macro summary", category)
	}

	apply(date, url, &extracted)
	return nil
}
