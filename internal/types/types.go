package types

import "strings"

// QuoteSnapshot holds the market quote data extracted for one ticker.
type QuoteSnapshot struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	PreviousClose float64 `json:"previous_close"`
	Open          float64 `json:"open"`
	DayLow        float64 `json:"day_low"`
	DayHigh       float64 `json:"day_high"`
	Volume        int64   `json:"volume"`
	MarketCap     *string `json:"market_cap"`
	EarningsDate  *string `json:"earnings_date"`
}

// AIAnalysis is the secondary analysis payload for one ticker. Title and
// Summary are nullable so the report fallback can render an empty section.
type AIAnalysis struct {
	Ticker  string   `json:"ticker"`
	Title   *string  `json:"title"`
	Summary *string  `json:"summary"`
	Bullets []string `json:"bullets"`
}

// EmptyAnalysis returns the graceful-fallback analysis used when the
// analysis source is disabled or failed for a ticker.
func EmptyAnalysis(ticker string) *AIAnalysis {
	return &AIAnalysis{
		Ticker:  ticker,
		Title:   nil,
		Summary: nil,
		Bullets: []string{},
	}
}

// Story is one news story card with an optional article summary.
type Story struct {
	Headline  string  `json:"headline"`
	URL       string  `json:"url"`
	Source    *string `json:"source"`
	Age       *string `json:"age"`
	Summary   *string `json:"summary"`
	Sentiment *string `json:"sentiment"` // positive, negative or neutral
}

// TopStories is the MarketWatch payload for one ticker.
type TopStories struct {
	Ticker  string  `json:"ticker"`
	Stories []Story `json:"stories"`
}

// NewsSummary aggregates the narrative across all Google News stories.
type NewsSummary struct {
	OverallSentiment *string  `json:"overall_sentiment"` // bullish, bearish, mixed or neutral
	BulletPoints     []string `json:"bullet_points"`
}

// NewsStories is the Google News payload for one ticker.
type NewsStories struct {
	Ticker      string       `json:"ticker"`
	Stories     []Story      `json:"stories"`
	NewsSummary *NewsSummary `json:"news_summary"`
}

// Headline is a single Vital Knowledge research bullet.
type Headline struct {
	Headline  string  `json:"headline"`
	Context   *string `json:"context"`
	Sentiment *string `json:"sentiment"`
}

// ResearchSummary condenses all research headlines for a ticker.
type ResearchSummary struct {
	OverallSentiment *string  `json:"overall_sentiment"`
	KeyThemes        []string `json:"key_themes"`
	Summary          *string  `json:"summary"`
}

// Research is the Vital Knowledge payload for one ticker, built from the
// morning and market close reports.
type Research struct {
	Ticker      string           `json:"ticker"`
	Headlines   []Headline       `json:"headlines"`
	ReportDates []string         `json:"report_dates"`
	Summary     *ResearchSummary `json:"summary"`
}

// MacroSummary carries the ticker-independent macro news for the morning
// and market close reports. Every field is independently nullable.
type MacroSummary struct {
	MorningDate    *string  `json:"morning_date"`
	MorningURL     *string  `json:"morning_url"`
	MorningSummary *string  `json:"morning_summary"`
	MorningBullets []string `json:"morning_bullets"`

	MarketCloseDate    *string  `json:"market_close_date"`
	MarketCloseURL     *string  `json:"market_close_url"`
	MarketCloseSummary *string  `json:"market_close_summary"`
	MarketCloseBullets []string `json:"market_close_bullets"`
}

// HasMorning reports whether the morning section carries renderable data.
func (m *MacroSummary) HasMorning() bool {
	return m != nil && m.MorningSummary != nil && *m.MorningSummary != ""
}

// HasMarketClose reports whether the market close section carries renderable data.
func (m *MacroSummary) HasMarketClose() bool {
	return m != nil && m.MarketCloseSummary != nil && *m.MarketCloseSummary != ""
}

// TickerRecord is the per-ticker aggregate of all source payloads and
// errors. It is written only by its own ticker task and, after the run's
// join point, by the merge step inserting batch research.
type TickerRecord struct {
	Ticker         string         `json:"ticker"`
	Error          *string        `json:"error"`
	Quote          *QuoteSnapshot `json:"quote"`
	Analysis       *AIAnalysis    `json:"analysis"`
	MarketWatch    *TopStories    `json:"marketwatch"`
	GoogleNews     *NewsStories   `json:"googlenews"`
	VitalKnowledge *Research      `json:"vital_knowledge"`

	errors []string
}

// NewTickerRecord creates an empty record for one ticker.
func NewTickerRecord(ticker string) *TickerRecord {
	return &TickerRecord{Ticker: NormalizeTicker(ticker)}
}

// AddError appends one source failure message. Messages accumulate and are
// joined into the Error field; they never overwrite each other.
func (r *TickerRecord) AddError(msg string) {
	r.errors = append(r.errors, msg)
	joined := strings.Join(r.errors, "; ")
	r.Error = &joined
}

// Errors returns the individual source failure messages recorded so far.
func (r *TickerRecord) Errors() []string {
	return r.errors
}

// NormalizeTicker canonicalizes a ticker symbol for use as a merge key.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// StringPtr returns a pointer to s. Payload fields are nullable pointers so
// snapshots serialize absent data as JSON null.
func StringPtr(s string) *string {
	return &s
}
