package locator

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// DefaultSelectors are tried in order; the first one that matches wins.
var DefaultSelectors = []string{
	`div[itemprop="articleBody"]`,
	"article",
	"main",
	"#main-content",
	".main-content",
	".post-content",
	".article-content",
	".entry-content",
	".content",
}

type compiled struct {
	raw string
	sel cascadia.Selector
}

// SelectorStrategy returns the first element matching the first selector in
// its list that matches anything.
type SelectorStrategy struct {
	selectors []compiled
}

// Selectors compiles the given CSS selectors, in priority order.
func Selectors(selectors ...string) (*SelectorStrategy, error) {
	s := &SelectorStrategy{selectors: make([]compiled, 0, len(selectors))}
	for _, raw := range selectors {
		sel, err := cascadia.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile selector %q: %w", raw, err)
		}
		s.selectors = append(s.selectors, compiled{raw: raw, sel: sel})
	}
	return s, nil
}

// MustSelectors is like Selectors but panics on an invalid selector.
func MustSelectors(selectors ...string) *SelectorStrategy {
	s, err := Selectors(selectors...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *SelectorStrategy) Name() string { return "selector" }

func (s *SelectorStrategy) Find(doc *goquery.Document) *goquery.Selection {
	for _, c := range s.selectors {
		if m := doc.FindMatcher(c.sel); m.Length() > 0 {
			return m.First()
		}
	}
	return nil
}

// String lists the selectors in priority order.
func (s *SelectorStrategy) String() string {
	raws := make([]string, len(s.selectors))
	for i, c := range s.selectors {
		raws[i] = c.raw
	}
	return strings.Join(raws, ", ")
}
