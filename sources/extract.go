package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/partscout/models"
)

// collector accumulates records up to a limit, dropping repeats of the
// same (title, link) pair.
type collector struct {
	limit   int
	seen    map[string]struct{}
	records []models.RawRecord
}

func newCollector(limit int) *collector {
	return &collector{
		limit:   limit,
		seen:    make(map[string]struct{}),
		records: make([]models.RawRecord, 0),
	}
}

// full reports whether the limit has been reached. limit <= 0 never fills.
func (c *collector) full() bool {
	return c.limit > 0 && len(c.records) >= c.limit
}

// add appends rec unless it duplicates an earlier record.
func (c *collector) add(rec models.RawRecord, titleKey string) {
	if c.full() {
		return
	}
	key := rec[titleKey] + "\x00" + rec["link"]
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.records = append(c.records, rec)
}

func parseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// text returns the trimmed, whitespace-collapsed text of the first match
// of m inside s.
func text(s *goquery.Selection, m cascadia.Selector) string {
	return strings.Join(strings.Fields(s.FindMatcher(m).First().Text()), " ")
}

// attr returns the trimmed attribute of the first match of m inside s.
func attr(s *goquery.Selection, m cascadia.Selector, name string) string {
	v, _ := s.FindMatcher(m).First().Attr(name)
	return strings.TrimSpace(v)
}
