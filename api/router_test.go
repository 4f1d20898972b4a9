package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/clipper/api"
	"github.com/use-agent/clipper/api/handler"
	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/scraper"
	"github.com/use-agent/clipper/store"
	"github.com/use-agent/clipper/translate"
)

type fakeScraper struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func (f *fakeScraper) Scrape(_ context.Context, url string, _ scraper.Options) (*models.ExtractionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[url]++
	if err := f.fail[url]; err != nil {
		return nil, err
	}
	return &models.ExtractionResult{
		URL:     url,
		Title:   "Title of " + url,
		Content: "<p>Hello <strong>world</strong></p>",
	}, nil
}

func (f *fakeScraper) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type fakeExporter struct {
	props map[string]models.Property
	err   error

	gotProps map[string]any
}

func (f *fakeExporter) Properties(context.Context) (map[string]models.Property, error) {
	return f.props, f.err
}

func (f *fakeExporter) CreatePage(_ context.Context, _ *models.Content, props map[string]any) (string, error) {
	f.gotProps = props
	if f.err != nil {
		return "", f.err
	}
	return "page-1", nil
}

type env struct {
	router   *gin.Engine
	scraper  *fakeScraper
	exporter *fakeExporter
	store    store.Store
}

func newEnv(t *testing.T, mutate ...func(*config.Config)) *env {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		Batch:  config.BatchConfig{Concurrency: 2},
	}
	for _, m := range mutate {
		m(cfg)
	}

	st := store.NewMemory(0, 0)
	t.Cleanup(func() { _ = st.Close() })

	e := &env{
		scraper:  &fakeScraper{fail: map[string]error{}},
		exporter: &fakeExporter{},
		store:    st,
	}
	d := &handler.Deps{
		Scraper:    e.scraper,
		Store:      st,
		Markdown:   cleaner.NewMarkdown(),
		Translator: translate.Placeholder{},
		Exporter:   e.exporter,
	}
	e.router = api.NewRouter(d, cfg, time.Now())
	return e
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "memory", resp.Store)
	assert.NotEmpty(t, resp.Version)
}

func TestScrape(t *testing.T) {
	t.Parallel()

	t.Run("scrapes and stores", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)

		w := e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": "https://example.com/a"})
		require.Equal(t, http.StatusOK, w.Code)
		rec := decode[models.Content](t, w)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "Title of https://example.com/a", rec.Title)
		assert.Equal(t, "<p>Hello <strong>world</strong></p>", rec.Content)
		assert.NotEmpty(t, rec.ContentHash)

		stored, err := e.store.FindByID(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.URL, stored.URL)
	})

	t.Run("returns stored record unless refresh", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		const u = "https://example.com/b"

		first := decode[models.Content](t, e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": u}))
		second := decode[models.Content](t, e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": u}))
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, e.scraper.count(u))

		third := decode[models.Content](t, e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": u, "refresh": true}))
		assert.NotEqual(t, first.ID, third.ID)
		assert.Equal(t, 2, e.scraper.count(u))
	})

	t.Run("markdown format", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)

		w := e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": "https://example.com/md", "format": "markdown"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Hello **world**", decode[models.Content](t, w).Content)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)

		for _, body := range []gin.H{
			{},
			{"url": "not a url"},
			{"url": "https://example.com", "format": "pdf"},
		} {
			w := e.do(t, http.MethodPost, "/api/scrape", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, models.ErrCodeInvalidInput, decode[models.ErrorResponse](t, w).Error.Code)
		}
	})

	t.Run("error codes map to status", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.scraper.fail["https://example.com/x"] = models.NewScrapeError(models.ErrCodeExhausted, "extraction failed after 3 attempts", nil)
		e.scraper.fail["https://example.com/y"] = models.NewScrapeError(models.ErrCodeInvalidInput, "bad url", nil)

		w := e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": "https://example.com/x"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, models.ErrCodeExhausted, decode[models.ErrorResponse](t, w).Error.Code)

		w = e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": "https://example.com/y"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBatch(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.scraper.fail["https://example.com/bad"] = models.NewScrapeError(models.ErrCodeExhausted, "gave up", nil)

	w := e.do(t, http.MethodPost, "/api/batch/scrape", gin.H{"urls": []string{
		"https://example.com/1", "https://example.com/bad", "https://example.com/2",
	}})
	require.Equal(t, http.StatusAccepted, w.Code)
	resp := decode[models.BatchResponse](t, w)
	assert.Equal(t, 3, resp.Total)

	var status models.BatchStatusResponse
	require.Eventually(t, func() bool {
		status = decode[models.BatchStatusResponse](t, e.do(t, http.MethodGet, "/api/batch/"+resp.ID, nil))
		return status.Status != models.BatchProcessing
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, models.BatchPartial, status.Status)
	assert.Equal(t, 3, status.Completed)
	require.Len(t, status.Results, 3)
	assert.True(t, status.Results[0].Success)
	assert.Equal(t, "https://example.com/1", status.Results[0].Content.URL)
	assert.False(t, status.Results[1].Success)
	assert.Equal(t, models.ErrCodeExhausted, status.Results[1].Error.Code)
	assert.True(t, status.Results[2].Success)
}

func TestBatch_Validation(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	urls := make([]string, models.MaxBatchURLs+1)
	for i := range urls {
		urls[i] = "https://example.com/p"
	}

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/batch/scrape", gin.H{"urls": urls}).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/batch/scrape", gin.H{"urls": []string{}}).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/batch/missing", nil).Code)
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	rec := decode[models.Content](t, e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": "https://example.com/t"}))

	w := e.do(t, http.MethodPost, "/api/translate", gin.H{"content_id": rec.ID})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Content](t, w)
	assert.Equal(t, "[Translated] Title of https://example.com/t", got.TranslatedTitle)
	assert.Equal(t, "[Translated] <p>Hello <strong>world</strong></p>", got.TranslatedContent)
	assert.Empty(t, got.TranslatedDescription)

	stored, err := e.store.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, got.TranslatedTitle, stored.TranslatedTitle)

	w = e.do(t, http.MethodPost, "/api/translate", gin.H{"content_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotion(t *testing.T) {
	t.Parallel()

	t.Run("properties", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.exporter.props = map[string]models.Property{
			"Status": {ID: "s", Name: "Status", Type: "select", Options: []models.PropertyOption{{Label: "Todo", Value: "Todo"}}},
		}

		w := e.do(t, http.MethodGet, "/api/notion/properties", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[models.PropertiesResponse](t, w)
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, e.exporter.props, resp.Data)
	})

	t.Run("save stores page id", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		rec := decode[models.Content](t, e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": "https://example.com/n"}))

		w := e.do(t, http.MethodPost, "/api/save-to-notion", gin.H{
			"content_id": rec.ID,
			"properties": gin.H{"Status": gin.H{"select": gin.H{"name": "Todo"}}},
		})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[models.SaveToNotionResponse](t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "page-1", resp.NotionPageID)
		assert.Contains(t, e.exporter.gotProps, "Status")

		stored, err := e.store.FindByID(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "page-1", stored.NotionPageID)
	})

	t.Run("export failure", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.exporter.err = models.NewScrapeError(models.ErrCodeExportFailed, "notion down", nil)
		rec := decode[models.Content](t, e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": "https://example.com/f"}))

		w := e.do(t, http.MethodPost, "/api/save-to-notion", gin.H{"content_id": rec.ID})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, models.ErrCodeExportFailed, decode[models.ErrorResponse](t, w).Error.Code)
	})
}

func TestAuthGuardsAPI(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(c *config.Config) {
		c.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}}
	})

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/health", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/api/scrape", gin.H{"url": "https://example.com"}).Code)
}
