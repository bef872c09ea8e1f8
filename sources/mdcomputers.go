package sources

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/partscout/models"
)

const mdProductLink = "a[href*='/product/']"

var (
	mdAnchor = cascadia.MustCompile(mdProductLink)
	rePrice  = regexp.MustCompile(`₹\s?[\d,]+(?:\.\d+)?`)
)

// NewMDComputers returns the mdcomputers.in adapter.
func NewMDComputers(wait time.Duration) Adapter {
	return &rendered{
		source: models.SourceMDComputers,
		buildURL: func(query string) string {
			return "https://mdcomputers.in/?route=product/search&search=" + escapeQuery(query)
		},
		ready:   mdProductLink,
		wait:    wait,
		extract: ExtractMDComputers,
	}
}

// ExtractMDComputers walks every product anchor on the page. The same
// product is usually linked from its image and its name, so repeats of a
// (title, link) pair are dropped.
func ExtractMDComputers(html string, limit int) ([]models.RawRecord, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}

	c := newCollector(limit)
	doc.FindMatcher(mdAnchor).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		title := strings.Join(strings.Fields(a.Text()), " ")
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || href == "" || strings.HasPrefix(strings.ToLower(title), "add to cart") {
			return true
		}

		c.add(models.RawRecord{
			"title": title,
			"price": nearbyPrice(a),
			"link":  href,
		}, "title")
		return !c.full()
	})
	return c.records, nil
}

// nearbyPrice looks for a rupee amount in the anchor's next sibling,
// then anywhere in the enclosing list item.
func nearbyPrice(a *goquery.Selection) string {
	if m := rePrice.FindString(a.Next().Text()); m != "" {
		return m
	}
	if li := a.Closest("li"); li.Length() > 0 {
		return rePrice.FindString(li.Text())
	}
	return ""
}
