package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Search    SearchConfig
	Store     StoreConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 5000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the rendering sessions.
type BrowserConfig struct {
	// Headless renders without a visible window.
	Headless bool // default: true

	// NoSandbox disables Chrome's OS sandbox (needed in Docker).
	NoSandbox bool // default: false

	// DisableDevShm stops Chrome from using /dev/shm, which is tiny in
	// most containers.
	DisableDevShm bool // default: true

	// Stealth injects anti-bot-detection evasions before navigation.
	Stealth bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for browser and HTTP traffic.
	DefaultProxy string

	// NavigationTimeout bounds a single page.Navigate.
	NavigationTimeout time.Duration // default: 30s

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// SearchConfig controls the aggregator and its sources.
type SearchConfig struct {
	// DefaultLimit is the per-source result cap when a request sets none.
	DefaultLimit int // default: 50

	// MaxLimit clamps client-supplied limits.
	MaxLimit int // default: 200

	// WaitTimeout bounds the wait for results to render.
	WaitTimeout time.Duration // default: 15s

	// PopupTimeout bounds the wait for a dismissable interstitial.
	PopupTimeout time.Duration // default: 5s

	// HTTPTimeout bounds a plain HTTP source request.
	HTTPTimeout time.Duration // default: 15s
}

// StoreConfig locates the file-backed record stores.
type StoreConfig struct {
	// Path is the bbolt database file.
	Path string // default: "./data/partscout.db"

	// QuotationsDir holds saved quotation PDFs.
	QuotationsDir string // default: "./data/quotations"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per identity.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per identity.
	Burst int // default: 5
}

// CORSConfig controls cross-origin access for the browser frontend.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the API.
	AllowedOrigins []string // default: ["http://localhost:5173"]
}

// CacheConfig controls the search response cache.
type CacheConfig struct {
	// TTL is how long a successful search response is reused. 0 disables it.
	TTL time.Duration // default: 0

	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory, if present, is loaded first and
// never overrides variables already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: envOr("PARTSCOUT_HOST", "0.0.0.0"),
			Port: envIntOr("PARTSCOUT_PORT", 5000),
			Mode: envOr("PARTSCOUT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:          envBoolOr("PARTSCOUT_HEADLESS", true),
			NoSandbox:         envBoolOr("PARTSCOUT_NO_SANDBOX", false),
			DisableDevShm:     envBoolOr("PARTSCOUT_DISABLE_DEV_SHM", true),
			Stealth:           envBoolOr("PARTSCOUT_STEALTH", true),
			BrowserBin:        os.Getenv("PARTSCOUT_BROWSER_BIN"),
			DefaultProxy:      os.Getenv("PARTSCOUT_PROXY"),
			NavigationTimeout: envDurationOr("PARTSCOUT_NAV_TIMEOUT", 30*time.Second),
			BlockedResourceTypes: envSliceOr("PARTSCOUT_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Search: SearchConfig{
			DefaultLimit: envIntOr("PARTSCOUT_RESULT_LIMIT", 50),
			MaxLimit:     envIntOr("PARTSCOUT_MAX_RESULT_LIMIT", 200),
			WaitTimeout:  envDurationOr("PARTSCOUT_WAIT_TIMEOUT", 15*time.Second),
			PopupTimeout: envDurationOr("PARTSCOUT_POPUP_TIMEOUT", 5*time.Second),
			HTTPTimeout:  envDurationOr("PARTSCOUT_HTTP_TIMEOUT", 15*time.Second),
		},
		Store: StoreConfig{
			Path:          envOr("PARTSCOUT_DB_PATH", "./data/partscout.db"),
			QuotationsDir: envOr("PARTSCOUT_QUOTATIONS_DIR", "./data/quotations"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PARTSCOUT_AUTH_ENABLED", false),
			APIKeys: envSliceOr("PARTSCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PARTSCOUT_RATE_RPS", 2.0),
			Burst:             envIntOr("PARTSCOUT_RATE_BURST", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: envSliceOr("PARTSCOUT_CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Cache: CacheConfig{
			TTL:        envDurationOr("PARTSCOUT_CACHE_TTL", 0),
			MaxEntries: envIntOr("PARTSCOUT_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("PARTSCOUT_LOG_LEVEL", "info"),
			Format: envOr("PARTSCOUT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
