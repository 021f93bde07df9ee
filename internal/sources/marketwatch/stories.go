// Package marketwatch fetches top story cards from a ticker's MarketWatch
// page and summarizes each article.
package marketwatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/types"
)

// StoriesSource harvests story links from the ticker page, then visits each
// article for a summary. Per-article failures keep the card without a
// summary; only a failure to reach the ticker page itself fails the fetch.
type StoriesSource struct {
	extractor interfaces.Extractor
	maxCards  int
}

var _ interfaces.StoriesSource = (*StoriesSource)(nil)

func NewStoriesSource(extractor interfaces.Extractor, maxCards int) *StoriesSource {
	if maxCards < 1 {
		maxCards = 3
	}
	return &StoriesSource{extractor: extractor, maxCards: maxCards}
}

func (m *StoriesSource) Name() string { return "MarketWatch" }

func (m *StoriesSource) Fetch(ctx context.Context, s interfaces.Session, ticker string) (*types.TopStories, error) {
	ticker = types.NormalizeTicker(ticker)
	url := fmt.Sprintf("https://www.marketwatch.com/investing/stock/%s", strings.ToLower(ticker))

	logger.Debug(ctx, "Loading MarketWatch page", "ticker", ticker, "url", url)
	if err := s.Goto(ctx, url); err != nil {
		return nil, fmt.Errorf("load ticker page: %w", err)
	}

	doc, err := s.Document()
	if err != nil {
		return nil, fmt.Errorf("parse ticker page: %w", err)
	}

	links := harvestStoryLinks(doc, m.maxCards)
	logger.Info(ctx, "MarketWatch story cards found", "ticker", ticker, "count", len(links))

	stories := make([]types.Story, 0, len(links))
	for _, link := range links {
		story := types.Story{Headline: link.headline, URL: link.url}
		if err := m.summarize(ctx, s, ticker, &story); err != nil {
			logger.Warn(ctx, "MarketWatch article summary failed",
				"ticker", ticker, "url", link.url, "error", err)
		}
		stories = append(stories, story)
	}

	return &types.TopStories{Ticker: ticker, Stories: stories}, nil
}

func (m *StoriesSource) summarize(ctx context.Context, s interfaces.Session, ticker string, story *types.Story) error {
	if err := s.Goto(ctx, story.URL); err != nil {
		return err
	}
	text, err := s.Text()
	if err != nil {
		return err
	}

	instruction := fmt.Sprintf(`Read this news article about %s stock.

Provide:
- summary: a brief 2-3 sentence summary of the news and why it matters for %s
- sentiment: "positive", "negative" or "neutral"`, ticker, ticker)

	var extracted struct {
		Summary   *string `json:"summary"`
		Sentiment *string `json:"sentiment"`
	}
	if err := m.extractor.Extract(ctx, instruction, text, &extracted); err != nil {
		return err
	}

	story.URL = s.CurrentURL()
	story.Summary = extracted.Summary
	story.Sentiment = extracted.Sentiment
	return nil
}

type storyLink struct {
	headline string
	url      string
}

// harvestStoryLinks picks distinct article links out of the ticker page.
func harvestStoryLinks(doc *goquery.Document, max int) []storyLink {
	var links []storyLink
	seen := make(map[string]bool)

	doc.Find("a[href*='/story/']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		headline := strings.TrimSpace(sel.Text())
		if len(headline) < 15 {
			return true
		}
		if strings.HasPrefix(href, "/") {
			href = "https://www.marketwatch.com" + href
		}
		if !strings.HasPrefix(href, "http") || seen[href] {
			return true
		}
		seen[href] = true
		links = append(links, storyLink{headline: headline, url: href})
		return len(links) < max
	})

	return links
}
