// Package browser owns the lifecycle of headless Chromium sessions used by
// sources that render their results client-side.
package browser

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/partscout/config"
	"github.com/use-agent/partscout/models"
)

// ErrForeignPage is returned by Release for a Page this manager did not create.
var ErrForeignPage = errors.New("browser: page was not acquired from this manager")

// Manager launches one browser process per Acquire and tears it down on
// Release. Sessions are never pooled or shared between callers.
// Manager itself is safe for concurrent use.
type Manager struct {
	cfg    config.BrowserConfig
	active atomic.Int32
}

// NewManager creates a Manager. No browser is started until Acquire.
func NewManager(cfg config.BrowserConfig) *Manager {
	return &Manager{cfg: cfg}
}

// Active returns the number of sessions currently acquired and not released.
func (m *Manager) Active() int {
	return int(m.active.Load())
}

// Acquire launches a browser, opens a single tab and prepares it
// (stealth, resource blocking, headers). The caller must Release the
// returned Page on every exit path.
//
// Lifecycle:
//
//  1. Launch      – start Chromium with the configured flags
//  2. Connect     – attach over CDP
//  3. Open tab    – one page per session
//  4. Stealth     – mask navigator.webdriver etc. (before any navigation!)
//  5. Headers     – Accept-Language for localised storefronts
//  6. Hijack      – block images/CSS/fonts/media
//
// Any failure tears down what was already started and returns a
// SESSION_INIT_FAILED error.
func (m *Manager) Acquire(ctx context.Context) (Page, error) {
	// ── 1. Launch ───────────────────────────────────────────────────
	l := m.newLauncher()
	controlURL, err := l.Launch()
	if err != nil {
		l.Cleanup()
		return nil, models.NewSearchError(models.ErrCodeSessionInit, "failed to launch browser", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	// ── 2. Connect ──────────────────────────────────────────────────
	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, models.NewSearchError(models.ErrCodeSessionInit, "failed to connect to browser", err)
	}
	// Detach the request context from the browser handle so teardown
	// still works after the caller's context is done.
	b = b.Context(context.Background())

	s := &Session{
		launcher:   l,
		browser:    b,
		navTimeout: m.cfg.NavigationTimeout,
		onRelease:  func() { m.active.Add(-1) },
	}
	m.active.Add(1)

	// ── 3. Open tab ─────────────────────────────────────────────────
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = s.close()
		return nil, models.NewSearchError(models.ErrCodeSessionInit, "failed to open page", err)
	}
	s.page = page

	// ── 4. Stealth ──────────────────────────────────────────────────
	if m.cfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	// ── 5. Headers ──────────────────────────────────────────────────
	setHeaders(page, map[string]string{
		"Accept-Language": "en-IN,en;q=0.9",
	})

	// ── 6. Hijack ───────────────────────────────────────────────────
	s.router = setupHijack(page, m.cfg.BlockedResourceTypes)

	slog.Info("rendering session acquired", "active", m.Active())
	return s, nil
}

// Release tears down the session behind p. Releasing the same Page twice
// is a no-op.
func (m *Manager) Release(p Page) error {
	s, ok := p.(*Session)
	if !ok || s == nil {
		return ErrForeignPage
	}
	err := s.close()
	if err == nil {
		slog.Info("rendering session released", "active", m.Active())
	}
	return err
}

// newLauncher builds the Chromium launcher from config.
func (m *Manager) newLauncher() *launcher.Launcher {
	l := launcher.New().
		Headless(m.cfg.Headless).
		NoSandbox(m.cfg.NoSandbox).
		Leakless(true)

	if m.cfg.BrowserBin != "" {
		l = l.Bin(m.cfg.BrowserBin)
	}
	if m.cfg.DefaultProxy != "" {
		l = l.Proxy(m.cfg.DefaultProxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))
	if m.cfg.DisableDevShm {
		l.Set(flags.Flag("disable-dev-shm-usage"))
	}
	return l
}
