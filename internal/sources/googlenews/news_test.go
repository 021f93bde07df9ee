package googlenews

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"morning-snapshot/internal/types"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestMatchURLs(t *testing.T) {
	doc := docFromHTML(t, `
		<html><body>
		<a href="https://news.example.com/apple-earnings-beat-expectations-q3">Apple earnings beat expectations in Q3 results</a>
		<a href="https://other.example.com/unrelated">Some completely different story about weather</a>
		<a href="/relative/path">Apple earnings beat expectations relative link</a>
		<a href="https://short.example.com/x">short</a>
		</body></html>`)

	metas := []articleMeta{
		{Headline: "Apple earnings beat expectations in Q3 results", Source: types.StringPtr("Example News")},
		{Headline: "Headline with no matching link anywhere"},
	}

	stories := matchURLs(metas, doc)
	if len(stories) != 1 {
		t.Fatalf("Expected 1 matched story, got %d", len(stories))
	}
	if stories[0].URL != "https://news.example.com/apple-earnings-beat-expectations-q3" {
		t.Errorf("Unexpected URL %s", stories[0].URL)
	}
	if stories[0].Source == nil || *stories[0].Source != "Example News" {
		t.Errorf("Expected source carried over, got %v", stories[0].Source)
	}
}

func TestMatchURLsShortHeadline(t *testing.T) {
	doc := docFromHTML(t, `
		<html><body>
		<a href="https://news.example.com/aapl-up">AAPL up 3% premarket on upgrade news today</a>
		</body></html>`)

	// Headlines shorter than the 30-char needle cap still match in full.
	metas := []articleMeta{{Headline: "AAPL up 3% premarket"}}
	stories := matchURLs(metas, doc)
	if len(stories) != 1 {
		t.Fatalf("Expected 1 matched story, got %d", len(stories))
	}
}

func TestHasSummary(t *testing.T) {
	if hasSummary(types.Story{}) {
		t.Error("Nil summary should not count")
	}
	if hasSummary(types.Story{Summary: types.StringPtr("")}) {
		t.Error("Empty summary should not count")
	}
	if hasSummary(types.Story{Summary: types.StringPtr("Error: page blocked")}) {
		t.Error("Error-prefixed summary should not count")
	}
	if !hasSummary(types.Story{Summary: types.StringPtr("Stock rose on earnings.")}) {
		t.Error("Real summary should count")
	}
}
