package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/partscout/aggregator"
	"github.com/use-agent/partscout/api"
	"github.com/use-agent/partscout/browser"
	"github.com/use-agent/partscout/cache"
	"github.com/use-agent/partscout/config"
	"github.com/use-agent/partscout/sources"
	"github.com/use-agent/partscout/store"
)

var Version = "dev"

var port int

var rootCmd = &cobra.Command{
	Use:   "partscout",
	Short: "PC component price search across Indian storefronts",
	Long: `partscout searches Amazon, Flipkart, MD Computers and Bing Shopping
for PC components, normalizes the listings into one schema and tags each
with a component category.

Running without a subcommand starts the HTTP API.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("partscout %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 0, "listen port (overrides PARTSCOUT_PORT)")
	rootCmd.AddCommand(serveCmd, searchCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAggregator wires the source registry, session manager and optional
// response cache.
func newAggregator(cfg *config.Config) (*aggregator.Aggregator, *browser.Manager) {
	sessions := browser.NewManager(cfg.Browser)
	registry := sources.Default(cfg.Search, sources.NewHTTPClient(cfg.Search.HTTPTimeout))

	opts := aggregator.Options{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	}
	if cfg.Cache.TTL > 0 {
		opts.Cache = cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return aggregator.New(registry, sessions, opts), sessions
}

func runServe() error {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()
	if port > 0 {
		cfg.Server.Port = port
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("partscout starting",
		"version", Version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
	)

	// ── 3. Open record store ────────────────────────────────────────
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	// ── 4. Wire sources and aggregator ──────────────────────────────
	agg, sessions := newAggregator(cfg)
	slog.Info("sources registered",
		"sources", agg.Sources(),
		"cacheTTL", cfg.Cache.TTL,
	)

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(agg, sessions, db, cfg, time.Now())

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
		return err
	}

	// A search holds a browser for up to a minute; give it time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err, "activeSessions", sessions.Active())
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("partscout stopped")
	return nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
