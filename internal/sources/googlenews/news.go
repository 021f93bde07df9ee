// Package googlenews fetches recent news for a ticker from Google News
// search results, visits each article and summarizes it.
package googlenews

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/types"
)

// NewsSource reads filtered, date-sorted news search results. Headlines are
// identified by the extractor from page text; URLs come from the DOM, since
// models are unreliable at reproducing hrefs.
type NewsSource struct {
	extractor  interfaces.Extractor
	maxStories int
	maxDays    int
}

var _ interfaces.NewsSource = (*NewsSource)(nil)

func NewNewsSource(extractor interfaces.Extractor, maxStories, maxDays int) *NewsSource {
	if maxStories < 1 {
		maxStories = 4
	}
	if maxDays < 1 {
		maxDays = 5
	}
	return &NewsSource{extractor: extractor, maxStories: maxStories, maxDays: maxDays}
}

func (g *NewsSource) Name() string { return "GoogleNews" }

// articleMeta is what the extractor pulls from the results page, before URL
// matching.
type articleMeta struct {
	Headline string  `json:"headline"`
	Source   *string `json:"source"`
	Age      *string `json:"age"`
}

func (g *NewsSource) Fetch(ctx context.Context, s interfaces.Session, ticker string) (*types.NewsStories, error) {
	ticker = types.NormalizeTicker(ticker)

	// tbm=nws selects the news tab, qdr:dN filters to the last N days,
	// sbd:1 sorts newest first.
	query := strings.ReplaceAll(fmt.Sprintf("%s stock news", ticker), " ", "+")
	url := fmt.Sprintf("https://www.google.com/search?q=%s&tbm=nws&tbs=qdr:d%d,sbd:1", query, g.maxDays)

	logger.Debug(ctx, "Loading Google News results", "ticker", ticker, "url", url)
	if err := s.Goto(ctx, url); err != nil {
		return nil, fmt.Errorf("load news results: %w", err)
	}

	doc, err := s.Document()
	if err != nil {
		return nil, fmt.Errorf("parse news results: %w", err)
	}
	text, err := s.Text()
	if err != nil {
		return nil, fmt.Errorf("read news results: %w", err)
	}

	metas, err := g.extractArticleList(ctx, ticker, text)
	if err != nil {
		return nil, fmt.Errorf("extract article list: %w", err)
	}

	stories := g.visitArticles(ctx, s, ticker, matchURLs(metas, doc))
	logger.Info(ctx, "Google News articles processed",
		"ticker", ticker, "stories", len(stories), "summarized", countSummarized(stories))

	result := &types.NewsStories{Ticker: ticker, Stories: stories}
	if countSummarized(stories) > 0 {
		if overall, err := g.summarizeAll(ctx, ticker, stories); err != nil {
			logger.Warn(ctx, "Google News overall summary failed", "ticker", ticker, "error", err)
		} else {
			result.NewsSummary = overall
		}
	}
	return result, nil
}

func (g *NewsSource) extractArticleList(ctx context.Context, ticker, text string) ([]articleMeta, error) {
	instruction := fmt.Sprintf(`Find the top %d news article headlines from these Google News search results about %s stock.

For each article provide:
- headline: the article title text
- source: the publisher name (e.g. "Reuters", "CNBC"), or null
- age: how old the article is (e.g. "2 hours ago"), or null

ONLY include articles from the last %d days. Return a JSON array in order of relevance and recency.`,
		g.maxStories, ticker, g.maxDays)

	var metas []articleMeta
	if err := g.extractor.Extract(ctx, instruction, text, &metas); err != nil {
		return nil, err
	}
	return metas, nil
}

// matchURLs pairs extracted headlines with real hrefs from the results DOM.
// A link matches when its text contains the leading part of the headline.
func matchURLs(metas []articleMeta, doc *goquery.Document) []types.Story {
	type link struct {
		url  string
		text string
	}
	var links []link
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())
		if ok && strings.HasPrefix(href, "http") && len(text) > 15 {
			links = append(links, link{url: href, text: strings.ToLower(text)})
		}
	})

	var stories []types.Story
	for _, meta := range metas {
		needle := strings.ToLower(meta.Headline)
		if len(needle) > 30 {
			needle = needle[:30]
		}
		for _, l := range links {
			if strings.Contains(l.text, needle) {
				stories = append(stories, types.Story{
					Headline: meta.Headline,
					URL:      l.url,
					Source:   meta.Source,
					Age:      meta.Age,
				})
				break
			}
		}
	}
	return stories
}

// visitArticles loads each matched article and fills in its summary. An
// article that fails keeps its headline and URL with a null summary.
func (g *NewsSource) visitArticles(ctx context.Context, s interfaces.Session, ticker string, stories []types.Story) []types.Story {
	if len(stories) > g.maxStories {
		stories = stories[:g.maxStories]
	}
	for i := range stories {
		if err := g.summarizeArticle(ctx, s, ticker, &stories[i]); err != nil {
			logger.Warn(ctx, "Google News article summary failed",
				"ticker", ticker, "url", stories[i].URL, "error", err)
		}
	}
	return stories
}

func (g *NewsSource) summarizeArticle(ctx context.Context, s interfaces.Session, ticker string, story *types.Story) error {
	if err := s.Goto(ctx, story.URL); err != nil {
		return err
	}
	text, err := s.Text()
	if err != nil {
		return err
	}

	instruction := fmt.Sprintf(`Read this news article about %s stock.

Write a brief 2-3 sentence summary explaining:
- what the main news/event is
- why it is causing %s stock to move
- whether it is positive, negative or neutral for the stock

Provide:
- summary: your 2-3 sentence summary
- sentiment: "positive", "negative" or "neutral"`, ticker, ticker)

	var extracted struct {
		Summary   *string `json:"summary"`
		Sentiment *string `json:"sentiment"`
	}
	if err := g.extractor.Extract(ctx, instruction, text, &extracted); err != nil {
		return err
	}

	story.URL = s.CurrentURL()
	story.Summary = extracted.Summary
	story.Sentiment = extracted.Sentiment
	return nil
}

func (g *NewsSource) summarizeAll(ctx context.Context, ticker string, stories []types.Story) (*types.NewsSummary, error) {
	var lines []string
	for _, story := range stories {
		if hasSummary(story) {
			lines = append(lines, fmt.Sprintf("- %s: %s", story.Headline, *story.Summary))
		}
	}

	instruction := fmt.Sprintf(`Based on these %d news article summaries about %s stock:

%s

Provide:
- overall_sentiment: "bullish", "bearish", "mixed" or "neutral"
- bullet_points: exactly 4 concise bullet points of the most important, current market news for %s`,
		len(lines), ticker, strings.Join(lines, "\n"), ticker)

	var overall types.NewsSummary
	if err := g.extractor.Extract(ctx, instruction, "", &overall); err != nil {
		return nil, err
	}
	return &overall, nil
}

func hasSummary(s types.Story) bool {
	return s.Summary != nil && *s.Summary != "" && !strings.HasPrefix(*s.Summary, "Error")
}

func countSummarized(stories []types.Story) int {
	n := 0
	for _, s := range stories {
		if hasSummary(s) {
			n++
		}
	}
	return n
}
