package scraper

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/locator"
	"github.com/use-agent/clipper/metadata"
	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/textnorm"
)

// Pipeline turns a fetched page into an ExtractionResult: metadata and
// content location over one parsed document, then sanitization of the
// located region. It holds only read-only collaborators.
type Pipeline struct {
	meta      *metadata.Extractor
	locator   *locator.Locator
	sanitizer *cleaner.Sanitizer
	logger    *slog.Logger
}

// NewPipeline wires the extraction stages together.
func NewPipeline(meta *metadata.Extractor, loc *locator.Locator, san *cleaner.Sanitizer) *Pipeline {
	return &Pipeline{meta: meta, locator: loc, sanitizer: san, logger: slog.Default()}
}

// DefaultPipeline uses the built-in table, strategy chain and sanitizer
// defaults, with no site rules.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		metadata.NewExtractor(metadata.DefaultTable()),
		locator.New(),
		cleaner.NewSanitizer(cleaner.Config{}),
	)
}

// Extract runs the stages over page. sourceURL is the URL the caller asked
// for; it is what the result reports and what relative URLs resolve against.
// A page with no locatable or non-empty content is CONTENT_EXTRACTION_FAILED.
func (p *Pipeline) Extract(page *Page, sourceURL string) (*models.ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "parse document", err)
	}

	base := sourceURL
	if page.URL != "" {
		base = page.URL
	}

	fields := p.meta.Extract(doc, base)

	cand, ok := p.locator.Locate(doc)
	if !ok {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "main content not found", nil)
	}

	content, err := p.sanitizer.Sanitize(cand, base)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("content extracted",
		slog.String("url", sourceURL),
		slog.String("strategy", cand.Strategy),
		slog.Int("length", len(content)),
	)

	return &models.ExtractionResult{
		URL:         strings.TrimSpace(sourceURL),
		Title:       fields.Title,
		Content:     normalizeMarkup(content),
		Description: fields.Description,
		Author:      fields.Author,
		Date:        fields.Date,
		HeaderImage: fields.HeaderImage,
		SiteName:    fields.SiteName,
	}, nil
}

// normalizeMarkup strips control characters and surrounding whitespace from
// serialized markup. Entities are left encoded: decoding them would turn
// escaped text back into tags.
func normalizeMarkup(s string) string {
	return strings.TrimSpace(textnorm.StripControl(s))
}
