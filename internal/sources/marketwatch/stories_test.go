package marketwatch

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestHarvestStoryLinks(t *testing.T) {
	html := `
	<html><body>
	<a href="/story/apple-stock-rises-123">Apple stock rises after strong iPhone demand</a>
	<a href="https://www.marketwatch.com/story/chip-rally-456">Chip stocks rally on data center spending</a>
	<a href="/story/apple-stock-rises-123">Apple stock rises after strong iPhone demand</a>
	<a href="/story/too-short">short</a>
	<a href="/markets">Markets section link that is long enough</a>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	links := harvestStoryLinks(doc, 5)
	if len(links) != 2 {
		t.Fatalf("Expected 2 links (deduped, story-only), got %d", len(links))
	}
	if links[0].url != "https://www.marketwatch.com/story/apple-stock-rises-123" {
		t.Errorf("Expected relative URL made absolute, got %s", links[0].url)
	}
	if links[1].headline != "Chip stocks rally on data center spending" {
		t.Errorf("Unexpected headline %q", links[1].headline)
	}
}

func TestHarvestStoryLinksCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 10; i++ {
		b.WriteString(`<a href="/story/article-` + string(rune('a'+i)) + `">A sufficiently long headline number ` + string(rune('a'+i)) + `</a>`)
	}
	b.WriteString("</body></html>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}

	links := harvestStoryLinks(doc, 3)
	if len(links) != 3 {
		t.Errorf("Expected cap at 3 links, got %d", len(links))
	}
}
