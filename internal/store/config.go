package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Watchlist     []string `yaml:"watchlist"`
	WatchlistPath string   `yaml:"watchlist_path"`

	MaxConcurrentBrowsers int    `yaml:"max_concurrent_browsers"`
	QuoteSource           string `yaml:"quote_source"` // WEB or KITE

	Sources struct {
		YahooQuote     *bool `yaml:"yahoo_quote"`
		YahooAnalysis  *bool `yaml:"yahoo_analysis"`
		MarketWatch    *bool `yaml:"marketwatch"`
		GoogleNews     *bool `yaml:"google_news"`
		VitalNews      *bool `yaml:"vital_news"`
		MacroNews      *bool `yaml:"macro_news"`
	} `yaml:"sources"`

	Session struct {
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		UserAgent      string `yaml:"user_agent"`
	} `yaml:"session"`

	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`

	GoogleNews struct {
		MaxStories int `yaml:"max_stories"`
		MaxDays    int `yaml:"max_days"`
	} `yaml:"google_news"`

	MarketWatch struct {
		MaxCards int `yaml:"max_cards"`
	} `yaml:"marketwatch"`

	Output struct {
		SnapshotDir string `yaml:"snapshot_dir"`
		ReportDir   string `yaml:"report_dir"`
	} `yaml:"output"`
}

func (c *Config) Validate() error {
	if c.MaxConcurrentBrowsers < 1 {
		return fmt.Errorf("max_concurrent_browsers must be at least 1, got %d", c.MaxConcurrentBrowsers)
	}
	if c.QuoteSource != "WEB" && c.QuoteSource != "KITE" {
		return fmt.Errorf("invalid quote_source '%s': must be 'WEB' or 'KITE'", c.QuoteSource)
	}
	if c.Session.TimeoutSeconds <= 0 {
		return fmt.Errorf("session.timeout_seconds must be positive, got %d", c.Session.TimeoutSeconds)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.MaxConcurrentBrowsers == 0 {
		c.MaxConcurrentBrowsers = 2
	}
	if c.QuoteSource == "" {
		c.QuoteSource = "WEB"
	}
	if c.WatchlistPath == "" {
		c.WatchlistPath = "config/watchlist.json"
	}
	if c.Session.TimeoutSeconds == 0 {
		c.Session.TimeoutSeconds = 30
	}
	if c.Session.UserAgent == "" {
		c.Session.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NONE"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.GoogleNews.MaxStories == 0 {
		c.GoogleNews.MaxStories = 4
	}
	if c.GoogleNews.MaxDays == 0 {
		c.GoogleNews.MaxDays = 5
	}
	if c.MarketWatch.MaxCards == 0 {
		c.MarketWatch.MaxCards = 3
	}
	if c.Output.SnapshotDir == "" {
		c.Output.SnapshotDir = "snapshots"
	}
	if c.Output.ReportDir == "" {
		c.Output.ReportDir = "reports"
	}
}

// applyEnvOverrides lets deployment environments toggle sources and the
// concurrency ceiling without editing the config file.
func (c *Config) applyEnvOverrides() {
	overrideFlag(&c.Sources.YahooQuote, "ENABLE_YAHOO_QUOTE")
	overrideFlag(&c.Sources.YahooAnalysis, "ENABLE_YAHOO_ANALYSIS")
	overrideFlag(&c.Sources.MarketWatch, "ENABLE_MARKETWATCH")
	overrideFlag(&c.Sources.GoogleNews, "ENABLE_GOOGLE_NEWS")
	overrideFlag(&c.Sources.VitalNews, "ENABLE_VITAL_NEWS")
	overrideFlag(&c.Sources.MacroNews, "ENABLE_MACRO_NEWS")

	if v := os.Getenv("MAX_CONCURRENT_BROWSERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			if n < 1 {
				n = 1
			}
			c.MaxConcurrentBrowsers = n
		}
	}
}

func overrideFlag(dst **bool, key string) {
	v, set := os.LookupEnv(key)
	if !set {
		return
	}
	b := parseFlag(v)
	*dst = &b
}

// parseFlag accepts the common truthy spellings; anything else is false.
func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// SourceEnabled reports whether a source flag is on. Unset flags default to
// enabled.
func SourceEnabled(flag *bool) bool {
	return flag == nil || *flag
}
