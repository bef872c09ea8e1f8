// Package sources holds one adapter per external catalog. An adapter turns
// a query into raw, unnormalized records for exactly one source.
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/partscout/browser"
	"github.com/use-agent/partscout/config"
	"github.com/use-agent/partscout/models"
)

// Adapter queries one external catalog.
type Adapter interface {
	// Source identifies the catalog.
	Source() models.Source

	// NeedsSession reports whether Fetch requires a rendering session.
	NeedsSession() bool

	// Fetch returns at most limit raw records for query. page is nil for
	// adapters that do not need a session. A source that never renders
	// results within its wait bound yields an empty slice and a nil error.
	Fetch(ctx context.Context, query string, page browser.Page, limit int) ([]models.RawRecord, error)
}

// Registry holds adapters in registration order, which is also the order
// their results appear in.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a Registry. Later adapters for an already-registered
// source are ignored.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{}
	seen := make(map[models.Source]bool, len(adapters))
	for _, a := range adapters {
		if seen[a.Source()] {
			continue
		}
		seen[a.Source()] = true
		r.adapters = append(r.adapters, a)
	}
	return r
}

// Default builds the production registry: bing, amazon, flipkart, mdcomputers.
func Default(cfg config.SearchConfig, client Getter) *Registry {
	return NewRegistry(
		NewBing(client),
		NewAmazon(cfg.WaitTimeout),
		NewFlipkart(cfg.WaitTimeout, cfg.PopupTimeout),
		NewMDComputers(mdComputersWait(cfg.WaitTimeout)),
	)
}

// mdComputersWait keeps MD Computers' shorter wait unless the configured
// wait is shorter still.
func mdComputersWait(configured time.Duration) time.Duration {
	const wait = 10 * time.Second
	if configured > 0 && configured < wait {
		return configured
	}
	return wait
}

// All returns every registered adapter in order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Sources lists the registered sources in order.
func (r *Registry) Sources() []models.Source {
	out := make([]models.Source, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a.Source())
	}
	return out
}

// Lookup returns the adapter for src.
func (r *Registry) Lookup(src models.Source) (Adapter, bool) {
	for _, a := range r.adapters {
		if a.Source() == src {
			return a, true
		}
	}
	return nil, false
}

// Select resolves a seller filter. "all", "" and unrecognised values
// select every adapter; a source name selects only that adapter.
func (r *Registry) Select(filter string) []Adapter {
	f := strings.ToLower(strings.TrimSpace(filter))
	if f != "" && f != models.SellerAll {
		if a, ok := r.Lookup(models.Source(f)); ok {
			return []Adapter{a}
		}
		slog.Debug("unknown seller filter, using all sources", "seller", filter)
	}
	return r.All()
}

// escapeQuery encodes query for a URL query string, writing spaces as %20.
func escapeQuery(query string) string {
	return strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
}

// rendered is the common flow of a session-dependent adapter:
// navigate, optionally prepare the page, wait for results, extract.
type rendered struct {
	source   models.Source
	buildURL func(query string) string
	ready    string
	wait     time.Duration
	prepare  func(ctx context.Context, page browser.Page)
	extract  func(html string, limit int) ([]models.RawRecord, error)
}

func (r *rendered) Source() models.Source { return r.source }
func (r *rendered) NeedsSession() bool    { return true }

func (r *rendered) Fetch(ctx context.Context, query string, page browser.Page, limit int) ([]models.RawRecord, error) {
	if page == nil {
		return nil, fmt.Errorf("%s: no rendering session", r.source)
	}

	target := r.buildURL(query)
	slog.Info("fetching source", "source", r.source, "url", target)

	if err := page.Navigate(ctx, target); err != nil {
		return nil, fmt.Errorf("%s: %w", r.source, err)
	}

	if r.prepare != nil {
		r.prepare(ctx, page)
	}

	if !page.WaitFor(ctx, r.ready, r.wait) {
		slog.Warn("source results did not render",
			"source", r.source,
			"code", models.ErrCodeSourceDown,
			"wait", r.wait,
		)
		return []models.RawRecord{}, nil
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.source, err)
	}

	records, err := r.extract(html, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: extract: %w", r.source, err)
	}
	slog.Info("source extracted", "source", r.source, "count", len(records))
	return records, nil
}
