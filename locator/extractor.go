package locator

import (
	"bytes"
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// minExtractedText is the least visible text an extractor-backed strategy
// must produce before its output is trusted.
const minExtractedText = 50

// ReadabilityStrategy runs Mozilla's Readability algorithm over the whole
// document and returns the article it isolates.
type ReadabilityStrategy struct {
	baseURL *nurl.URL
}

// Readability returns a ReadabilityStrategy. base may be nil.
func Readability(base *nurl.URL) *ReadabilityStrategy {
	return &ReadabilityStrategy{baseURL: base}
}

func (r *ReadabilityStrategy) Name() string { return "readability" }

func (r *ReadabilityStrategy) Find(doc *goquery.Document) *goquery.Selection {
	raw, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return nil
	}
	article, err := readability.FromReader(strings.NewReader(raw), r.baseURL)
	if err != nil {
		slog.Debug("readability: extraction failed", "error", err)
		return nil
	}
	if len(strings.TrimSpace(article.TextContent)) < minExtractedText {
		return nil
	}
	return reparse(article.Content)
}

// TrafilaturaStrategy runs go-trafilatura with its fallback extractors
// enabled and returns the content node it settles on.
type TrafilaturaStrategy struct {
	baseURL *nurl.URL
}

// Trafilatura returns a TrafilaturaStrategy. base may be nil.
func Trafilatura(base *nurl.URL) *TrafilaturaStrategy {
	return &TrafilaturaStrategy{baseURL: base}
}

func (t *TrafilaturaStrategy) Name() string { return "trafilatura" }

func (t *TrafilaturaStrategy) Find(doc *goquery.Document) *goquery.Selection {
	raw, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return nil
	}
	result, err := trafilatura.Extract(strings.NewReader(raw), trafilatura.Options{
		EnableFallback: true,
		OriginalURL:    t.baseURL,
	})
	if err != nil || result == nil || result.ContentNode == nil {
		if err != nil {
			slog.Debug("trafilatura: extraction failed", "error", err)
		}
		return nil
	}
	if len(strings.TrimSpace(result.ContentText)) < minExtractedText {
		return nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil
	}
	return reparse(buf.String())
}

// reparse wraps an extractor's HTML output in a fresh document and returns
// its body children as a single container.
func reparse(fragment string) *goquery.Selection {
	d, err := goquery.NewDocumentFromReader(strings.NewReader("<div data-clipper-region>" + fragment + "</div>"))
	if err != nil {
		return nil
	}
	sel := d.Find("div[data-clipper-region]").First()
	if sel.Length() == 0 {
		return nil
	}
	sel.RemoveAttr("data-clipper-region")
	return sel
}
