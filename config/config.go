package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Basket    BasketConfig
	Crawler   CrawlerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the shared Rod browser session.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// Bin overrides the Chromium binary path.
	Bin string

	// Proxy is an optional proxy URL for all browser traffic.
	Proxy string
}

// ScraperConfig controls scraping behavior.
type ScraperConfig struct {
	// NavigationTimeout bounds page navigation for headless scrapes.
	NavigationTimeout time.Duration // default: 30s

	// SelectorTimeout is the per-attempt wait for a selector to appear.
	SelectorTimeout time.Duration // default: 10s

	// SelectorRetries is the number of extra wait attempts after the first.
	SelectorRetries int // default: 2

	// SearchDeadline bounds an entire search or basket fan-out. Zero
	// disables the aggregate deadline and leaves only per-task timeouts.
	SearchDeadline time.Duration // default: 90s

	// ScreenshotDir receives diagnostic screenshots of failed headless
	// scrapes. Empty disables screenshots.
	ScreenshotDir string

	// BlockedResourceTypes lists browser resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// BasketConfig controls basket comparison.
type BasketConfig struct {
	// MaxItems caps the basket size per request.
	MaxItems int // default: 30
}

// CrawlerConfig controls the external sitemap-crawler bridge.
type CrawlerConfig struct {
	// DBPath is the SQLite product catalogue written by the crawler.
	DBPath string // default: "./data/products.db"

	// Script is the crawler entry script run as a subprocess.
	Script string // default: "./scrapers/run_crawler.py"

	// Python is the interpreter used to launch the crawler.
	Python string // default: "python3"

	// LaunchesPerHour rate-limits subprocess launches.
	LaunchesPerHour float64 // default: 6

	// WebhookURL, if set, receives crawl completion events.
	WebhookURL string

	// WebhookSecret signs webhook payloads with HMAC-SHA256.
	WebhookSecret string
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
	// RequestsPerSecond is the sustained rate per API key or client IP.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
}

// CacheConfig controls the search response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500

	// TTL is how long a cached search response stays fresh. Zero
	// disables caching.
	TTL time.Duration // default: 5m
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("TROLLEY_HOST", "0.0.0.0"),
			Port: envIntOr("TROLLEY_PORT", 8080),
			Mode: envOr("TROLLEY_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:  envBoolOr("TROLLEY_HEADLESS", true),
			NoSandbox: envBoolOr("TROLLEY_NO_SANDBOX", false),
			Bin:       os.Getenv("TROLLEY_BROWSER_BIN"),
			Proxy:     os.Getenv("TROLLEY_PROXY"),
		},
		Scraper: ScraperConfig{
			NavigationTimeout: envDurationOr("TROLLEY_NAV_TIMEOUT", 30*time.Second),
			SelectorTimeout:   envDurationOr("TROLLEY_SELECTOR_TIMEOUT", 10*time.Second),
			SelectorRetries:   envIntOr("TROLLEY_SELECTOR_RETRIES", 2),
			SearchDeadline:    envDurationOr("TROLLEY_SEARCH_DEADLINE", 90*time.Second),
			ScreenshotDir:     os.Getenv("TROLLEY_SCREENSHOT_DIR"),
			BlockedResourceTypes: envSliceOr("TROLLEY_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Basket: BasketConfig{
			MaxItems: envIntOr("TROLLEY_BASKET_MAX_ITEMS", 30),
		},
		Crawler: CrawlerConfig{
			DBPath:          envOr("TROLLEY_CRAWLER_DB", "./data/products.db"),
			Script:          envOr("TROLLEY_CRAWLER_SCRIPT", "./scrapers/run_crawler.py"),
			Python:          envOr("TROLLEY_CRAWLER_PYTHON", "python3"),
			LaunchesPerHour: envFloatOr("TROLLEY_CRAWLER_LAUNCHES_PER_HOUR", 6),
			WebhookURL:      os.Getenv("TROLLEY_CRAWLER_WEBHOOK_URL"),
			WebhookSecret:   os.Getenv("TROLLEY_CRAWLER_WEBHOOK_SECRET"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("TROLLEY_AUTH_ENABLED", false),
			APIKeys: envSliceOr("TROLLEY_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("TROLLEY_RATE_RPS", 5.0),
			Burst:             envIntOr("TROLLEY_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("TROLLEY_CACHE_MAX_ENTRIES", 500),
			TTL:        envDurationOr("TROLLEY_CACHE_TTL", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  envOr("TROLLEY_LOG_LEVEL", "info"),
			Format: envOr("TROLLEY_LOG_FORMAT", "json"),
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
