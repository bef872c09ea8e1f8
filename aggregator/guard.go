package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/use-agent/partscout/browser"
	"github.com/use-agent/partscout/models"
	"github.com/use-agent/partscout/sources"
)

// outcome is the result of one adapter invocation. Exactly one of
// records and err is meaningful.
type outcome struct {
	records []models.RawRecord
	err     error
}

// guard runs one adapter and converts anything it does, including a
// panic, into an outcome. Nothing escapes to the caller.
func guard(ctx context.Context, a sources.Adapter, query string, page browser.Page, limit int) (out outcome) {
	src := a.Source()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("source panicked",
				"source", src,
				"code", models.ErrCodeSourceDown,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			out = outcome{err: fmt.Errorf("%s: panic: %v", src, r)}
		}
	}()

	records, err := a.Fetch(ctx, query, page, limit)
	if err != nil {
		slog.Warn("source failed",
			"source", src,
			"code", models.ErrCodeSourceDown,
			"error", err,
		)
		return outcome{err: err}
	}
	if records == nil {
		records = []models.RawRecord{}
	}
	return outcome{records: records}
}
