// Package handler implements the HTTP endpoints of the clipper API.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/scraper"
	"github.com/use-agent/clipper/store"
	"github.com/use-agent/clipper/translate"
	"github.com/use-agent/clipper/webhook"
)

// Scraper produces an extraction result for a URL.
type Scraper interface {
	Scrape(ctx context.Context, url string, opts scraper.Options) (*models.ExtractionResult, error)
}

// Exporter writes records to the page database.
type Exporter interface {
	Properties(ctx context.Context) (map[string]models.Property, error)
	CreatePage(ctx context.Context, rec *models.Content, props map[string]any) (string, error)
}

// Deps bundles the collaborators shared by the handlers.
type Deps struct {
	Scraper    Scraper
	Store      store.Store
	Markdown   *cleaner.Markdown
	Translator translate.Translator
	Exporter   Exporter
	Webhook    *webhook.Notifier // nil disables events
	Logger     *slog.Logger
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// scrapeAndStore runs one scrape, converts the content when format is
// "markdown", and persists the record.
func (d *Deps) scrapeAndStore(ctx context.Context, url, format string) (*models.Content, error) {
	result, err := d.Scraper.Scrape(ctx, url, scraper.Options{})
	if err != nil {
		return nil, err
	}

	rec := models.NewContent(result)
	if format == "markdown" {
		md, err := d.Markdown.Convert(rec.Content, rec.URL)
		if err != nil {
			return nil, models.NewScrapeError(models.ErrCodeInternal, "markdown conversion failed", err)
		}
		rec.Content = md
	}

	if err := d.Store.Create(ctx, rec); err != nil {
		return nil, err
	}

	d.Webhook.DeliverAsync(webhook.NewEvent(webhook.EventContentScraped, rec.ID, rec))
	return rec, nil
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ErrorResponse{Error: scrapeErr.ToDetail()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: err.Error()},
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeNetwork, models.ErrCodeExhausted:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
