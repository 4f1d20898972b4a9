// Package metadata infers article metadata (title, author, date and friends)
// from the tag-level hints a page carries: meta tags, JSON-LD blocks and, for
// the publication date, a last-resort scan of date-looking elements.
//
// Every step is best-effort. Extract never fails; fields it cannot fill are
// left empty.
package metadata

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/clipper/textnorm"
)

// Fields holds the extracted metadata. All values are normalized single-line
// strings; HeaderImage is absolute or empty.
type Fields struct {
	Title       string
	Description string
	Author      string
	Date        string
	HeaderImage string
	SiteName    string
}

func (f *Fields) slot(name Field) *string {
	switch name {
	case Title:
		return &f.Title
	case Description:
		return &f.Description
	case Author:
		return &f.Author
	case Date:
		return &f.Date
	case HeaderImage:
		return &f.HeaderImage
	case SiteName:
		return &f.SiteName
	}
	return nil
}

// fill sets the named field when it is still empty and value normalizes to
// something non-empty. Date values must also parse; a hint like "yesterday"
// leaves the field for lower-priority sources. It reports whether the field
// was set.
func (f *Fields) fill(name Field, value string) bool {
	p := f.slot(name)
	if p == nil || *p != "" {
		return false
	}
	v := textnorm.Line(value)
	if v == "" {
		return false
	}
	if name == Date {
		d, ok := ParseDate(v)
		if !ok {
			return false
		}
		v = d
	}
	*p = v
	return true
}

// Extractor applies a Table to parsed documents. It holds no per-call state
// and is safe for concurrent use.
type Extractor struct {
	table  *Table
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for recoverable failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor returns an Extractor driven by table. A nil table means
// DefaultTable.
func NewExtractor(table *Table, opts ...Option) *Extractor {
	if table == nil {
		table = DefaultTable()
	}
	e := &Extractor{table: table, logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract reads metadata from doc. sourceURL is used to absolutize the
// header image; if it cannot be parsed the header image is dropped.
func (e *Extractor) Extract(doc *goquery.Document, sourceURL string) Fields {
	var f Fields
	if doc == nil {
		return f
	}

	// ── 1. <title> ──
	f.fill(Title, doc.Find("title").First().Text())

	// ── 2. Meta tags ──
	e.fromMeta(doc, &f)

	// ── 3. JSON-LD ──
	e.fromStructuredData(doc, sourceURL, &f)

	// ── 4. Header image → absolute ──
	if f.HeaderImage != "" {
		f.HeaderImage = absoluteURL(sourceURL, f.HeaderImage)
	}

	// ── 5. Date fallback ──
	if f.Date == "" {
		f.Date = scanDate(doc)
	}

	return f
}

// fromMeta records, per hint key, the first non-empty value in document
// order, then fills fields in table order so that higher-priority hints win
// regardless of where their tags sit in the page.
func (e *Extractor) fromMeta(doc *goquery.Document, f *Fields) {
	first := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key := hintKey(s)
		if key == "" {
			return
		}
		if _, seen := first[key]; seen {
			return
		}
		content, _ := s.Attr("content")
		if textnorm.Line(content) == "" {
			return
		}
		first[key] = content
	})

	for _, h := range e.table.meta {
		if v, ok := first[h.Key]; ok {
			f.fill(h.Field, v)
		}
	}
}

// hintKey prefers property over name, then itemprop.
func hintKey(s *goquery.Selection) string {
	for _, attr := range []string{"property", "name", "itemprop"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}

// absoluteURL resolves ref against base. It returns "" when the result is
// not an absolute http(s) URL.
func absoluteURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	u, err := b.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	if !u.IsAbs() || u.Host == "" {
		return ""
	}
	return u.String()
}
