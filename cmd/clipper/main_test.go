package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/use-agent/clipper/cmd/clipper"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/models"
)

const articleHTML = `<!doctype html>
<html><head>
<title>Fallback title</title>
<meta property="og:title" content="A &amp; B">
<meta name="author" content="Jane Doe">
<meta property="og:image" content="/img/hero.png">
</head><body>
<nav>menu</nav>
<article>
<h1>A &amp; B</h1>
<p>This is the body of the article with enough words to count as content.</p>
<p><a href="/next">Next</a></p>
</article>
</body></html>`

func testConfig() *config.Config {
	return &config.Config{
		Scraper: config.ScraperConfig{
			MaxAttempts:  1,
			RetryDelay:   time.Millisecond,
			Backoff:      "constant",
			FetchTimeout: 5 * time.Second,
			MaxBodySize:  1 << 20,
		},
		Extraction: config.ExtractionConfig{
			ChatSelectors: []string{"div.talk"},
			Policy:        true,
		},
		Log: config.LogConfig{Level: "error", Format: "text"},
	}
}

func TestMain_Scrape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	m := &main.Main{Config: testConfig()}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"scrape", srv.URL + "/post"}, stdout, stderr)
	require.NoError(t, err, stderr.String())

	var got models.ExtractionResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, srv.URL+"/post", got.URL)
	assert.Equal(t, "Fallback title", got.Title)
	assert.Equal(t, "Jane Doe", got.Author)
	assert.Equal(t, srv.URL+"/img/hero.png", got.HeaderImage)
	assert.Contains(t, got.Content, "body of the article")
	assert.Contains(t, got.Content, `href="`+srv.URL+`/next"`)
	assert.NotContains(t, got.Content, "menu")
}

func TestMain_ScrapeMarkdown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	m := &main.Main{Config: testConfig()}
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"scrape", "-f", "markdown", srv.URL}, stdout, &bytes.Buffer{})
	require.NoError(t, err)

	var got models.ExtractionResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Contains(t, got.Content, "# A & B")
	assert.Contains(t, got.Content, "[Next]("+srv.URL+"/next)")
}

func TestMain_ScrapeFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	m := &main.Main{Config: testConfig()}
	err := m.Run(context.Background(), []string{"scrape", srv.URL}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeExhausted, models.ErrorCode(err))
}

func TestMain_Help(t *testing.T) {
	t.Parallel()

	m := &main.Main{Config: testConfig()}
	stdout := &bytes.Buffer{}

	require.NoError(t, m.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "scrape")
	assert.Contains(t, stdout.String(), "serve")

	err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}
