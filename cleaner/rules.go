package cleaner

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/clipper/textnorm"
)

// Rule is a site-pattern rewrite applied to a content region after the
// built-in cleanup. Rules must tolerate elements they do not recognize.
type Rule interface {
	Name() string
	Apply(root *goquery.Selection)
}

// DefaultChatSelectors match chat-bubble markup that QuoteRule collapses.
var DefaultChatSelectors = []string{"div.talk"}

// QuoteRule replaces each matching chat bubble with a single blockquote
// holding the bubble's text.
type QuoteRule struct {
	matchers []cascadia.Selector
	class    string
}

// NewQuoteRule compiles selectors into a QuoteRule.
func NewQuoteRule(selectors ...string) (*QuoteRule, error) {
	q := &QuoteRule{class: "notion-quote"}
	for _, raw := range selectors {
		sel, err := cascadia.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile chat selector %q: %w", raw, err)
		}
		q.matchers = append(q.matchers, sel)
	}
	return q, nil
}

func (q *QuoteRule) Name() string { return "quote" }

func (q *QuoteRule) Apply(root *goquery.Selection) {
	for _, m := range q.matchers {
		root.FindMatcher(m).Each(func(_ int, bubble *goquery.Selection) {
			if bubble.Get(0).Parent == nil {
				return // inside a bubble that was already replaced
			}
			text := textnorm.Line(bubble.Text())
			if text == "" {
				return
			}
			quote := `<blockquote class="` + q.class + `">` + html.EscapeString(text) + `</blockquote>`
			bubble.ReplaceWithHtml(quote)
		})
	}
}
