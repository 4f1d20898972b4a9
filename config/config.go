package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Scraper    ScraperConfig
	Extraction ExtractionConfig
	Store      StoreConfig
	Batch      BatchConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Notion     NotionConfig
	Translate  TranslateConfig
	Webhook    WebhookConfig
	Log        LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// ScraperConfig controls fetching and the retry loop.
type ScraperConfig struct {
	MaxAttempts int           // default: 3
	RetryDelay  time.Duration // default: 2s

	// Backoff is "constant", "linear" or "exponential".
	Backoff string // default: "constant"

	FetchTimeout   time.Duration // default: 30s
	UserAgent      string        // empty keeps the fetcher's Chrome UA
	TLSFingerprint bool          // default: true
	MaxBodySize    int64         // default: 10 MiB
	Proxy          string
}

// ExtractionConfig tunes the content pipeline.
type ExtractionConfig struct {
	// RelatedKeywords are heading substrings that start a trailing
	// related-content section. Empty keeps the built-in list.
	RelatedKeywords []string

	// ChatSelectors match chat-bubble elements rewritten as quotes.
	ChatSelectors []string // default: ["div.talk"]

	// Readability and Trafilatura add the library extractors as locator
	// strategies ahead of the largest-text fallback.
	Readability bool // default: false
	Trafilatura bool // default: false

	// Policy runs the bluemonday pass over sanitized output.
	Policy bool // default: true
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// SQLitePath is the database file; empty selects the in-memory store.
	SQLitePath string

	// MaxEntries bounds the in-memory store.
	MaxEntries int // default: 1000

	// TTL expires in-memory records; zero disables expiry.
	TTL time.Duration
}

// BatchConfig controls batch scraping.
type BatchConfig struct {
	Concurrency int // default: 5
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key. Zero disables
	// the limiter.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// NotionConfig points the exporter at a database.
type NotionConfig struct {
	Token      string
	DatabaseID string
	BaseURL    string // default: "https://api.notion.com/v1"
	Version    string // default: "2022-06-28"
}

// TranslateConfig selects the translator. Without an API key the
// placeholder translator is used.
type TranslateConfig struct {
	BaseURL        string // default: "https://api.openai.com/v1"
	APIKey         string
	Model          string // default: "gpt-4o-mini"
	TargetLanguage string // default: "Japanese"
}

// WebhookConfig controls event delivery. Empty URL disables it.
type WebhookConfig struct {
	URL    string
	Secret string
	Delays []time.Duration // default: [0s, 1s, 5s, 30s]
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
			Host: envOr("CLIPPER_HOST", "0.0.0.0"),
			Port: envIntOr("CLIPPER_PORT", 8080),
			Mode: envOr("CLIPPER_MODE", "release"),
		},
		Scraper: ScraperConfig{
			MaxAttempts:    envIntOr("CLIPPER_MAX_ATTEMPTS", 3),
			RetryDelay:     envDurationOr("CLIPPER_RETRY_DELAY", 2*time.Second),
			Backoff:        envOr("CLIPPER_BACKOFF", "constant"),
			FetchTimeout:   envDurationOr("CLIPPER_FETCH_TIMEOUT", 30*time.Second),
			UserAgent:      os.Getenv("CLIPPER_USER_AGENT"),
			TLSFingerprint: envBoolOr("CLIPPER_TLS_FINGERPRINT", true),
			MaxBodySize:    int64(envIntOr("CLIPPER_MAX_BODY_SIZE", 10<<20)),
			Proxy:          os.Getenv("CLIPPER_PROXY"),
		},
		Extraction: ExtractionConfig{
			RelatedKeywords: envSliceOr("CLIPPER_RELATED_KEYWORDS", nil),
			ChatSelectors:   envSliceOr("CLIPPER_CHAT_SELECTORS", []string{"div.talk"}),
			Readability:     envBoolOr("CLIPPER_READABILITY", false),
			Trafilatura:     envBoolOr("CLIPPER_TRAFILATURA", false),
			Policy:          envBoolOr("CLIPPER_SANITIZE_POLICY", true),
		},
		Store: StoreConfig{
			SQLitePath: os.Getenv("CLIPPER_SQLITE_PATH"),
			MaxEntries: envIntOr("CLIPPER_STORE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("CLIPPER_STORE_TTL", 0),
		},
		Batch: BatchConfig{
			Concurrency: envIntOr("CLIPPER_BATCH_CONCURRENCY", 5),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("CLIPPER_AUTH_ENABLED", false),
			APIKeys: envSliceOr("CLIPPER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("CLIPPER_RATE_RPS", 5.0),
			Burst:             envIntOr("CLIPPER_RATE_BURST", 10),
		},
		Notion: NotionConfig{
			Token:      os.Getenv("CLIPPER_NOTION_TOKEN"),
			DatabaseID: os.Getenv("CLIPPER_NOTION_DATABASE_ID"),
			BaseURL:    envOr("CLIPPER_NOTION_BASE_URL", "https://api.notion.com/v1"),
			Version:    envOr("CLIPPER_NOTION_VERSION", "2022-06-28"),
		},
		Translate: TranslateConfig{
			BaseURL:        envOr("CLIPPER_LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:         os.Getenv("CLIPPER_LLM_API_KEY"),
			Model:          envOr("CLIPPER_LLM_MODEL", "gpt-4o-mini"),
			TargetLanguage: envOr("CLIPPER_TARGET_LANGUAGE", "Japanese"),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("CLIPPER_WEBHOOK_URL"),
			Secret: os.Getenv("CLIPPER_WEBHOOK_SECRET"),
			Delays: envDurationSliceOr("CLIPPER_WEBHOOK_DELAYS", []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}),
		},
		Log: LogConfig{
			Level:  envOr("CLIPPER_LOG_LEVEL", "info"),
			Format: envOr("CLIPPER_LOG_FORMAT", "json"),
		},
	}
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
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
