package sources

import (
	"context"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/partscout/browser"
	"github.com/use-agent/partscout/models"
)

const (
	flipkartResult = "div[data-id]"
	flipkartLogin  = "//button[contains(text(), '✕')]"
)

var (
	flipkartItem  = cascadia.MustCompile(flipkartResult)
	flipkartTitle = cascadia.MustCompile("a.IRpwTa, a.s1Q9rs, div._4rR01T, a._2rpwqI, div.KzDlHZ, a.wjcEIp")
	flipkartPrice = cascadia.MustCompile("div._30jeq3, div.Nx9bqj")
	flipkartLink  = cascadia.MustCompile("a._1fQZEK, a.s1Q9rs, a._2rpwqI, a.CGtC98, a.wjcEIp")
	flipkartBrand = cascadia.MustCompile("div._2WkVRV, div.syl9yP")
	anyLink       = cascadia.MustCompile("a[href]")
)

// NewFlipkart returns the flipkart.com adapter. popupWait bounds the
// attempt to close the login interstitial.
func NewFlipkart(wait, popupWait time.Duration) Adapter {
	return &rendered{
		source: models.SourceFlipkart,
		buildURL: func(query string) string {
			return "https://www.flipkart.com/search?q=" + escapeQuery(query)
		},
		ready: flipkartResult,
		wait:  wait,
		prepare: func(ctx context.Context, page browser.Page) {
			if page.ClickIfPresent(ctx, flipkartLogin, popupWait) {
				slog.Debug("closed login popup", "source", models.SourceFlipkart)
			}
		},
		extract: ExtractFlipkart,
	}
}

// ExtractFlipkart pulls product blocks out of a rendered flipkart.com page.
func ExtractFlipkart(html string, limit int) ([]models.RawRecord, error) {
	doc, err := parseHTML(html)
	if err != nil {
		return nil, err
	}

	c := newCollector(limit)
	doc.FindMatcher(flipkartItem).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		title := text(block, flipkartTitle)
		if title == "" {
			// Title links in grid layouts carry the name only in title=.
			title = attr(block, flipkartTitle, "title")
		}
		if title == "" {
			return true
		}

		link := attr(block, flipkartLink, "href")
		if link == "" {
			link = attr(block, anyLink, "href")
		}

		c.add(models.RawRecord{
			"title": title,
			"price": text(block, flipkartPrice),
			"link":  link,
			"brand": text(block, flipkartBrand),
		}, "title")
		return !c.full()
	})
	return c.records, nil
}
