package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// Page is the view of a rendering session that source adapters use.
// It is not safe for concurrent use; callers take turns.
type Page interface {
	// Navigate loads url and returns once navigation has committed.
	Navigate(ctx context.Context, url string) error

	// WaitFor blocks until selector matches at least one element or
	// timeout elapses. It reports whether the element appeared.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) bool

	// ClickIfPresent waits up to timeout for selector and clicks it.
	// A missing element is not an error.
	ClickIfPresent(ctx context.Context, selector string, timeout time.Duration) bool

	// HTML returns the current rendered DOM.
	HTML(ctx context.Context) (string, error)
}

// Session is one browser process with a single tab.
type Session struct {
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	router     *rod.HijackRouter
	navTimeout time.Duration
	onRelease  func()

	once     sync.Once
	closeErr error
}

var _ Page = (*Session)(nil)

func (s *Session) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if s.navTimeout > 0 {
		p = p.Timeout(s.navTimeout)
	}
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	return nil
}

func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) bool {
	_, err := s.find(ctx, selector, timeout)
	if err != nil {
		slog.Debug("wait for selector gave up", "selector", selector, "timeout", timeout, "error", err)
		return false
	}
	return true
}

func (s *Session) ClickIfPresent(ctx context.Context, selector string, timeout time.Duration) bool {
	el, err := s.find(ctx, selector, timeout)
	if err != nil {
		return false
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		slog.Debug("click failed", "selector", selector, "error", err)
		return false
	}
	return true
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("browser: read DOM: %w", err)
	}
	return html, nil
}

// find polls for selector until it appears or timeout elapses.
// Selectors starting with "//" or "(" are treated as XPath.
func (s *Session) find(ctx context.Context, selector string, timeout time.Duration) (*rod.Element, error) {
	p := s.page.Context(ctx).Timeout(timeout)
	if isXPath(selector) {
		return p.ElementX(selector)
	}
	return p.Element(selector)
}

func isXPath(selector string) bool {
	return strings.HasPrefix(selector, "//") || strings.HasPrefix(selector, "(")
}

// close stops the hijack router, closes the browser and kills the
// process. Only the first call does any work.
func (s *Session) close() error {
	s.once.Do(func() {
		var errs []error
		if s.router != nil {
			if err := s.router.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop hijack router: %w", err))
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close browser: %w", err))
			}
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
		if s.onRelease != nil {
			s.onRelease()
		}
		if len(errs) > 0 {
			s.closeErr = fmt.Errorf("browser: release: %w", errors.Join(errs...))
		}
	})
	return s.closeErr
}

// setHeaders sends headers with every request c makes. A failure is
// logged and otherwise ignored.
func setHeaders(c proto.Client, headers map[string]string) {
	err := proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(c)
	if err != nil {
		slog.Debug("extra headers not applied, proceeding without them",
			"error", err,
		)
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
