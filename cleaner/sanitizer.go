// Package cleaner turns a located content region into publishable markup:
// boilerplate is stripped, trailing related-content sections are cut,
// resource URLs are made absolute, and tables and images get consistent
// presentation attributes.
package cleaner

import (
	"log/slog"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/use-agent/clipper/locator"
	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/textnorm"
)

// DefaultRemoveTags are elements that never belong in article content.
var DefaultRemoveTags = []string{"script", "style", "iframe", "nav", "header", "footer", "aside"}

// DefaultRelatedKeywords mark a heading as the start of a trailing
// related/recommended section.
var DefaultRelatedKeywords = []string{"関連", "related", "おすすめ", "recommend", "推荐", "相关"}

// lazySrcAttrs hold the real image URL on lazy-loading pages, in preference
// order. src comes last.
var lazySrcAttrs = []string{"data-src", "data-lazy-src", "data-original", "src"}

const (
	tableClass = "w-full border-collapse my-4"
	cellClass  = "border p-2"
)

// Config controls a Sanitizer. The zero value uses the defaults above and
// skips the policy pass.
type Config struct {
	RemoveTags      []string
	RelatedKeywords []string

	// Policy runs the serialized output through an HTML sanitization policy
	// that drops event handlers and unsafe URLs.
	Policy bool
}

// Sanitizer rewrites content regions. It keeps no per-call state and is
// safe for concurrent use.
type Sanitizer struct {
	removeSel string
	keywords  []string
	rules     []Rule
	policy    *bluemonday.Policy
	logger    *slog.Logger
}

// NewSanitizer builds a Sanitizer. rules run after the built-in rewrites,
// in the order given.
func NewSanitizer(cfg Config, rules ...Rule) *Sanitizer {
	remove := cfg.RemoveTags
	if len(remove) == 0 {
		remove = DefaultRemoveTags
	}
	keywords := cfg.RelatedKeywords
	if len(keywords) == 0 {
		keywords = DefaultRelatedKeywords
	}
	s := &Sanitizer{
		removeSel: strings.Join(remove, ", "),
		keywords:  make([]string, len(keywords)),
		rules:     rules,
		logger:    slog.Default(),
	}
	for i, k := range keywords {
		s.keywords[i] = strings.ToLower(k)
	}
	if cfg.Policy {
		s.policy = newPolicy()
	}
	return s
}

// WithLogger sets the logger for skipped elements.
func (s *Sanitizer) WithLogger(l *slog.Logger) *Sanitizer {
	s.logger = l
	return s
}

// Sanitize rewrites a copy of cand and serializes it. The candidate's own
// document is left untouched. A region with no visible text and no image
// after cleaning is a CONTENT_EXTRACTION_FAILED error.
func (s *Sanitizer) Sanitize(cand *locator.Candidate, sourceURL string) (string, error) {
	if cand == nil || cand.Selection == nil || cand.Selection.Length() == 0 {
		return "", models.NewScrapeError(models.ErrCodeExtraction, "no content region", nil)
	}
	base, err := url.Parse(sourceURL)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "invalid source URL", err)
	}

	root := cand.Selection.First().Clone()

	// ── 1. Boilerplate elements ──
	root.Find(s.removeSel).Remove()

	// ── 2. Trailing related-content section ──
	s.cutRelated(root)

	// ── 3. Images and links ──
	s.rewriteImages(root, base)
	s.rewriteLinks(root, base)

	// ── 4. Tables ──
	root.Find("table").Each(func(_ int, t *goquery.Selection) {
		t.AddClass(tableClass)
		t.Find("td, th").AddClass(cellClass)
	})

	// ── 5. Pluggable rules ──
	for _, r := range s.rules {
		r.Apply(root)
	}

	if isEmpty(root) {
		return "", models.NewScrapeError(models.ErrCodeExtraction, "content empty after sanitization", nil)
	}

	// ── 6. Serialize ──
	out, err := goquery.OuterHtml(root)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeExtraction, "serialize content", err)
	}
	if s.policy != nil {
		out = s.policy.Sanitize(out)
	}
	return out, nil
}

// cutRelated removes the first heading that names a related section, and
// everything after it at the same level. Sections that come before the
// article body, or sit in the middle of it, are not detected.
func (s *Sanitizer) cutRelated(root *goquery.Selection) {
	root.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := strings.ToLower(textnorm.Line(h.Text()))
		if !containsAny(text, s.keywords) {
			return true
		}
		node := h.Get(0)
		if parent := node.Parent; parent != nil {
			for n := node.NextSibling; n != nil; {
				next := n.NextSibling
				parent.RemoveChild(n)
				n = next
			}
			parent.RemoveChild(node)
		}
		return false
	})
}

func (s *Sanitizer) rewriteImages(root *goquery.Selection, base *url.URL) {
	root.Find("img").Each(func(_ int, img *goquery.Selection) {
		var raw string
		for _, attr := range lazySrcAttrs {
			if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
				raw = v
				break
			}
		}
		if raw == "" {
			return
		}
		abs, err := base.Parse(raw)
		if err != nil {
			s.logger.Debug("skipping image with bad source", slog.String("src", raw), slog.String("error", err.Error()))
			return
		}
		img.SetAttr("src", abs.String())
		img.SetAttr("loading", "lazy")
	})
}

func (s *Sanitizer) rewriteLinks(root *goquery.Selection, base *url.URL) {
	root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		abs, err := base.Parse(href)
		if err != nil {
			return
		}
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		a.SetAttr("href", abs.String())
	})
}

func isEmpty(root *goquery.Selection) bool {
	if hasVisibleText(root.Nodes) {
		return false
	}
	return root.Find("img").Length() == 0 && goquery.NodeName(root) != "img"
}

// hasVisibleText reports whether any text node under nodes holds a rune
// that is neither whitespace nor a control character.
func hasVisibleText(nodes []*html.Node) bool {
	for _, n := range nodes {
		if nodeHasText(n) {
			return true
		}
	}
	return false
}

func nodeHasText(n *html.Node) bool {
	if n.Type == html.TextNode {
		return strings.IndexFunc(n.Data, visible) >= 0
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if nodeHasText(c) {
			return true
		}
	}
	return false
}

func visible(r rune) bool {
	return !unicode.IsSpace(r) && !unicode.IsControl(r)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
