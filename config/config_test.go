package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Scraper.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Scraper.RetryDelay)
	assert.Equal(t, "constant", cfg.Scraper.Backoff)
	assert.True(t, cfg.Scraper.TLSFingerprint)
	assert.Equal(t, int64(10<<20), cfg.Scraper.MaxBodySize)
	assert.Equal(t, []string{"div.talk"}, cfg.Extraction.ChatSelectors)
	assert.Nil(t, cfg.Extraction.RelatedKeywords)
	assert.True(t, cfg.Extraction.Policy)
	assert.Empty(t, cfg.Store.SQLitePath)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "Japanese", cfg.Translate.TargetLanguage)
	assert.Len(t, cfg.Webhook.Delays, 4)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CLIPPER_PORT", "9090")
	t.Setenv("CLIPPER_MAX_ATTEMPTS", "5")
	t.Setenv("CLIPPER_RETRY_DELAY", "500ms")
	t.Setenv("CLIPPER_BACKOFF", "exponential")
	t.Setenv("CLIPPER_TLS_FINGERPRINT", "false")
	t.Setenv("CLIPPER_RELATED_KEYWORDS", " related , see also ,")
	t.Setenv("CLIPPER_API_KEYS", "a,b")
	t.Setenv("CLIPPER_RATE_RPS", "2.5")
	t.Setenv("CLIPPER_WEBHOOK_DELAYS", "0s, 10ms, bogus")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Scraper.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Scraper.RetryDelay)
	assert.Equal(t, "exponential", cfg.Scraper.Backoff)
	assert.False(t, cfg.Scraper.TLSFingerprint)
	assert.Equal(t, []string{"related", "see also"}, cfg.Extraction.RelatedKeywords)
	assert.Equal(t, []string{"a", "b"}, cfg.Auth.APIKeys)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 1e-9)
	assert.Equal(t, []time.Duration{0, 10 * time.Millisecond}, cfg.Webhook.Delays)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CLIPPER_PORT", "eighty")
	t.Setenv("CLIPPER_RETRY_DELAY", "soon")
	t.Setenv("CLIPPER_READABILITY", "maybe")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Scraper.RetryDelay)
	assert.False(t, cfg.Extraction.Readability)
}
