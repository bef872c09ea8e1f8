// Package normalizer maps source-specific raw records onto the canonical
// ProductListing schema.
package normalizer

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/use-agent/partscout/classifier"
	"github.com/use-agent/partscout/models"
)

// MaxTitleRunes is the display bound for titles.
const MaxTitleRunes = 80

// Ellipsis marks a truncated title.
const Ellipsis = "..."

// UnresolvedLink is used when a record has no usable link.
const UnresolvedLink = "#"

// fieldMap names the raw keys a source uses for each canonical field.
// An empty key means the source never reports that field.
type fieldMap struct {
	title  string
	price  string
	link   string
	brand  string
	seller string
	base   string // origin used to resolve relative links
}

var fieldMaps = map[models.Source]fieldMap{
	models.SourceAmazon: {
		title: "title", price: "price", link: "link", brand: "brand",
		base: "https://www.amazon.in",
	},
	models.SourceFlipkart: {
		title: "title", price: "price", link: "link", brand: "brand",
		base: "https://www.flipkart.com",
	},
	models.SourceMDComputers: {
		title: "title", price: "price", link: "link", brand: "brand",
		base: "https://mdcomputers.in",
	},
	models.SourceBing: {
		title: "name", price: "price", link: "link", seller: "seller",
		base: "https://www.bing.com",
	},
}

// Normalize converts one raw record from src into a ProductListing.
// It returns models.ErrMalformedRecord when the record has no usable title;
// every other missing field falls back to a default.
func Normalize(raw models.RawRecord, src models.Source) (models.ProductListing, error) {
	fm, ok := fieldMaps[src]
	if !ok {
		return models.ProductListing{}, fmt.Errorf("normalizer: unknown source %q", src)
	}

	title := TruncateTitle(collapseSpace(field(raw, fm.title)))
	if title == "" {
		return models.ProductListing{}, models.ErrMalformedRecord
	}

	return models.ProductListing{
		Title:    title,
		Price:    ParsePrice(field(raw, fm.price)),
		Link:     ResolveLink(fm.base, field(raw, fm.link)),
		Source:   src,
		Site:     src.SiteName(),
		Brand:    collapseSpace(field(raw, fm.brand)),
		Seller:   collapseSpace(field(raw, fm.seller)),
		Category: classifier.Classify(title),
	}, nil
}

// NormalizeAll normalizes raws in order, skipping malformed records, and
// stops once limit listings have been produced. limit <= 0 means no cap.
func NormalizeAll(raws []models.RawRecord, src models.Source, limit int) []models.ProductListing {
	out := make([]models.ProductListing, 0, len(raws))
	for i, raw := range raws {
		if limit > 0 && len(out) >= limit {
			break
		}
		listing, err := Normalize(raw, src)
		if err != nil {
			slog.Debug("skipping record",
				"source", src,
				"index", i,
				"code", models.ErrCodeMalformed,
				"error", err,
			)
			continue
		}
		out = append(out, listing)
	}
	return out
}

func field(raw models.RawRecord, key string) string {
	if key == "" || raw == nil {
		return ""
	}
	return raw[key]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateTitle caps s at MaxTitleRunes runes, appending Ellipsis when cut.
func TruncateTitle(s string) string {
	if utf8.RuneCountInString(s) <= MaxTitleRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:MaxTitleRunes])) + Ellipsis
}

var reNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParsePrice extracts a numeric amount from formatted price text such as
// "₹12,999" or "Rs. 1,499.00". Unparseable text yields PriceUnavailable.
func ParsePrice(text string) models.Price {
	cleaned := strings.NewReplacer(",", "", " ", "", " ", "").Replace(text)
	m := reNumber.FindString(cleaned)
	if m == "" {
		return models.PriceUnavailable
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return models.PriceUnavailable
	}
	return models.PriceOf(f)
}

// ResolveLink makes href absolute against base. Empty, fragment-only or
// non-http links resolve to UnresolvedLink.
func ResolveLink(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return UnresolvedLink
	}
	ref, err := url.Parse(href)
	if err != nil {
		return UnresolvedLink
	}
	if !ref.IsAbs() {
		b, err := url.Parse(base)
		if err != nil || base == "" {
			return UnresolvedLink
		}
		ref = b.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return UnresolvedLink
	}
	return ref.String()
}
