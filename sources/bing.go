package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/partscout/browser"
	"github.com/use-agent/partscout/models"
	"golang.org/x/net/html"
)

var (
	bingCard      = cascadia.MustCompile(".br-fullCard")
	bingTitleSpan = cascadia.MustCompile(".br-title span")
	bingTitle     = cascadia.MustCompile(".br-title")
	bingPrice     = cascadia.MustCompile(".pd-price")
	bingSeller    = cascadia.MustCompile(".br-seller")
	bingLink      = cascadia.MustCompile(".br-titlelink")
)

// Bing is the Bing Shopping adapter. It needs no rendering session: the
// result cards are present in the server-rendered markup.
type Bing struct {
	client  Getter
	baseURL string
}

// NewBing returns the Bing Shopping adapter.
func NewBing(client Getter) *Bing {
	return &Bing{client: client, baseURL: "https://www.bing.com/shop"}
}

func (b *Bing) Source() models.Source { return models.SourceBing }
func (b *Bing) NeedsSession() bool    { return false }

func (b *Bing) Fetch(ctx context.Context, query string, _ browser.Page, limit int) ([]models.RawRecord, error) {
	target := b.baseURL + "?q=" + url.QueryEscape(query)
	slog.Info("fetching source", "source", models.SourceBing, "url", target)

	body, err := b.client.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", models.SourceBing, err)
	}

	records, err := ExtractBing(body, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: extract: %w", models.SourceBing, err)
	}
	slog.Info("source extracted", "source", models.SourceBing, "count", len(records))
	return records, nil
}

// ExtractBing parses Bing Shopping result cards. Records use Bing's own
// field names (name, seller).
func ExtractBing(body []byte, limit int) ([]models.RawRecord, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(root)

	c := newCollector(limit)
	doc.FindMatcher(bingCard).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		name := attr(card, bingTitleSpan, "title")
		if name == "" {
			name = text(card, bingTitle)
		}
		if name == "" {
			return true
		}

		c.add(models.RawRecord{
			"name":   name,
			"price":  text(card, bingPrice),
			"seller": text(card, bingSeller),
			"link":   attr(card, bingLink, "href"),
		}, "name")
		return !c.full()
	})
	return c.records, nil
}
