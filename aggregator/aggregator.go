// Package aggregator fans a query out to the selected sources, isolates
// their failures and merges what they return into one response.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/use-agent/partscout/browser"
	"github.com/use-agent/partscout/cache"
	"github.com/use-agent/partscout/models"
	"github.com/use-agent/partscout/normalizer"
	"github.com/use-agent/partscout/sources"
)

// MinQueryRunes is the shortest accepted query after trimming.
const MinQueryRunes = 2

// SessionManager hands out rendering sessions. *browser.Manager satisfies it.
type SessionManager interface {
	Acquire(ctx context.Context) (browser.Page, error)
	Release(p browser.Page) error
}

// Options tunes an Aggregator.
type Options struct {
	// DefaultLimit applies when a request has no positive limit.
	DefaultLimit int
	// MaxLimit caps any requested limit. Zero means no cap.
	MaxLimit int
	// Cache, when non-nil, serves repeated successful searches.
	Cache *cache.Cache
}

// Aggregator runs searches across a source registry.
type Aggregator struct {
	registry *sources.Registry
	sessions SessionManager
	opts     Options
}

// New creates an Aggregator.
func New(registry *sources.Registry, sessions SessionManager, opts Options) *Aggregator {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 50
	}
	return &Aggregator{registry: registry, sessions: sessions, opts: opts}
}

// Sources lists the registered sources in result order.
func (a *Aggregator) Sources() []models.Source {
	return a.registry.Sources()
}

// Search queries every source selected by req.Seller and merges the
// results in registration order. A source that fails contributes nothing;
// the search as a whole fails only when no listing survives.
func (a *Aggregator) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	query, err := validateQuery(req.Query)
	if err != nil {
		return nil, err
	}
	req.Query = query
	req.Defaults(a.opts.DefaultLimit)
	limit := a.clampLimit(req.Limit)

	return a.cached(ctx, req.Query, req.Seller, limit, func() (*models.SearchResponse, error) {
		return a.run(ctx, query, req.Seller, limit, a.registry.Select(req.Seller))
	})
}

// SearchSource queries a single source with the same validation and
// envelope as Search.
func (a *Aggregator) SearchSource(ctx context.Context, req models.SearchRequest, src models.Source) (*models.SearchResponse, error) {
	query, err := validateQuery(req.Query)
	if err != nil {
		return nil, err
	}
	adapter, ok := a.registry.Lookup(src)
	if !ok {
		return nil, models.NewSearchError(models.ErrCodeInvalidInput,
			fmt.Sprintf("source %q is not registered", src), nil)
	}
	req.Defaults(a.opts.DefaultLimit)
	limit := a.clampLimit(req.Limit)

	return a.cached(ctx, query, string(src), limit, func() (*models.SearchResponse, error) {
		return a.run(ctx, query, string(src), limit, []sources.Adapter{adapter})
	})
}

func validateQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinQueryRunes {
		return "", models.NewSearchError(models.ErrCodeQueryTooShort,
			fmt.Sprintf("query must be at least %d characters long", MinQueryRunes), nil)
	}
	return q, nil
}

func (a *Aggregator) clampLimit(limit int) int {
	if limit <= 0 {
		limit = a.opts.DefaultLimit
	}
	if a.opts.MaxLimit > 0 && limit > a.opts.MaxLimit {
		limit = a.opts.MaxLimit
	}
	return limit
}

// cached serves from and fills the response cache. Only a response in
// which every source succeeded, produced under a live context, is stored.
func (a *Aggregator) cached(ctx context.Context, query, seller string, limit int, search func() (*models.SearchResponse, error)) (*models.SearchResponse, error) {
	if a.opts.Cache == nil {
		return search()
	}

	key := cache.Key(query, seller, limit)
	if resp, ok := a.opts.Cache.Get(key); ok {
		slog.Debug("search cache hit", "query", query, "seller", seller, "limit", limit)
		return resp, nil
	}

	resp, err := search()
	if err == nil && ctx.Err() == nil && complete(resp) {
		a.opts.Cache.Set(key, resp)
	}
	return resp, err
}

func complete(resp *models.SearchResponse) bool {
	for _, s := range resp.Sources {
		if !s.OK {
			return false
		}
	}
	return true
}

// run invokes adapters and merges their outcomes. Session-free adapters
// run concurrently with the session-bound ones; the session-bound ones
// take turns on a single session that is released exactly once.
func (a *Aggregator) run(ctx context.Context, query, seller string, limit int, adapters []sources.Adapter) (*models.SearchResponse, error) {
	start := time.Now()
	outcomes := make([]outcome, len(adapters))

	var wg sync.WaitGroup
	needSession := false
	for i, ad := range adapters {
		if ad.NeedsSession() {
			needSession = true
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = guard(ctx, ad, query, nil, limit)
		}()
	}

	var releaseErr error
	if needSession {
		releaseErr = a.runWithSession(ctx, query, limit, adapters, outcomes)
	}
	wg.Wait()

	if releaseErr != nil {
		slog.Error("search failed to release session",
			"query", query,
			"code", models.ErrCodeOrchestration,
			"error", releaseErr,
		)
		return nil, models.NewSearchError(models.ErrCodeOrchestration, "failed to release rendering session", releaseErr)
	}

	resp := merge(adapters, outcomes, limit)
	slog.Info("search completed",
		"query", query,
		"seller", seller,
		"count", resp.Count,
		"duration", time.Since(start),
	)

	if resp.Count == 0 {
		return nil, models.NewSearchError(models.ErrCodeNoResults,
			fmt.Sprintf("no products found for %q", query), nil)
	}
	return resp, nil
}

// runWithSession acquires one session and runs every session-bound adapter
// on it in order. It returns the release error, if any.
func (a *Aggregator) runWithSession(ctx context.Context, query string, limit int, adapters []sources.Adapter, outcomes []outcome) (releaseErr error) {
	page, err := a.acquire(ctx)
	if err != nil {
		slog.Error("rendering session unavailable",
			"code", models.ErrCodeSessionInit,
			"error", err,
		)
		for i, ad := range adapters {
			if ad.NeedsSession() {
				outcomes[i] = outcome{err: err}
			}
		}
		return nil
	}
	defer func() {
		releaseErr = a.sessions.Release(page)
	}()

	for i, ad := range adapters {
		if ad.NeedsSession() {
			outcomes[i] = guard(ctx, ad, query, page, limit)
		}
	}
	return nil
}

func (a *Aggregator) acquire(ctx context.Context) (browser.Page, error) {
	if a.sessions == nil {
		return nil, models.NewSearchError(models.ErrCodeSessionInit, "no session manager configured", nil)
	}
	page, err := a.sessions.Acquire(ctx)
	if err != nil {
		var se *models.SearchError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, models.NewSearchError(models.ErrCodeSessionInit, "failed to start rendering session", err)
	}
	return page, nil
}

// merge normalizes each successful outcome and concatenates the listings
// in adapter order.
func merge(adapters []sources.Adapter, outcomes []outcome, limit int) *models.SearchResponse {
	resp := &models.SearchResponse{
		Results: make([]models.ProductListing, 0),
		Sources: make([]models.SourceStatus, 0, len(adapters)),
	}
	for i, ad := range adapters {
		src := ad.Source()
		o := outcomes[i]
		if o.err != nil {
			resp.Sources = append(resp.Sources, models.SourceStatus{
				Source: src,
				Reason: reasonOf(o.err),
			})
			continue
		}

		listings := normalizer.NormalizeAll(o.records, src, limit)
		resp.Results = append(resp.Results, listings...)
		resp.Sources = append(resp.Sources, models.SourceStatus{
			Source: src,
			Count:  len(listings),
			OK:     true,
		})
	}
	resp.Count = len(resp.Results)
	resp.Success = resp.Count > 0
	return resp
}

func reasonOf(err error) string {
	var se *models.SearchError
	if errors.As(err, &se) {
		return se.Code
	}
	return models.ErrCodeSourceDown
}
