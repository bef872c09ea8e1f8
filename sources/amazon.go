package sources

import (
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/partscout/models"
)

const amazonResult = "div.s-main-slot > div[data-component-type='s-search-result']"

var (
	amazonItem  = cascadia.MustCompile(amazonResult)
	amazonTitle = cascadia.MustCompile("h2 span")
	amazonLink  = cascadia.MustCompile("h2 a, a.a-link-normal.s-no-outline")
	amazonPrice = cascadia.MustCompile("span.a-price span.a-price-whole")
)

// NewAmazon returns the amazon.in adapter.
func NewAmazon(wait time.Duration) Adapter {
	return &rendered{
		source: models.SourceAmazon,
		buildURL: func(query string) string {
			return "https://www.amazon.in/s?k=" + url.QueryEscape(query)
		},
		ready:   amazonResult,
		wait:    wait,
		extract: ExtractAmazon,
	}
}

// ExtractAmazon pulls search results out of a rendered amazon.in page.
func ExtractAmazon(html string, limit int) ([]models.RawRecord, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}

	c := newCollector(limit)
	doc.FindMatcher(amazonItem).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		title := text(item, amazonTitle)
		if title == "" {
			return true
		}
		c.add(models.RawRecord{
			"title": title,
			"price": text(item, amazonPrice),
			"link":  attr(item, amazonLink, "href"),
		}, "title")
		return !c.full()
	})
	return c.records, nil
}
