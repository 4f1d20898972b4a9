// Package locator finds the DOM subtree that holds a page's main content.
//
// A Locator runs an ordered list of strategies and returns the first
// candidate any of them produces. The default chain goes from precise to
// permissive: known content selectors, then class/id keywords, then the
// container with the most visible text.
package locator

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is a located content region. Selection may belong to a document
// other than the one passed to Locate (extractor-backed strategies re-parse
// their output), so callers must not assume shared ancestry.
type Candidate struct {
	Selection *goquery.Selection
	Strategy  string
}

// Strategy is one way of finding a content region.
type Strategy interface {
	// Name identifies the strategy in logs and results.
	Name() string
	// Find returns a non-empty selection or nil.
	Find(doc *goquery.Document) *goquery.Selection
}

// Locator tries strategies in order. It is safe for concurrent use as long
// as its strategies are.
type Locator struct {
	strategies []Strategy
	logger     *slog.Logger
}

// New returns a Locator over strategies. With none given it uses Default().
func New(strategies ...Strategy) *Locator {
	if len(strategies) == 0 {
		strategies = Default()
	}
	return &Locator{strategies: strategies, logger: slog.Default()}
}

// WithLogger returns a copy of l that logs through logger.
func (l *Locator) WithLogger(logger *slog.Logger) *Locator {
	cp := *l
	cp.logger = logger
	return &cp
}

// Default returns the built-in strategy chain.
func Default() []Strategy {
	return []Strategy{
		MustSelectors(DefaultSelectors...),
		Keywords(DefaultKeywords...),
		LargestText(),
	}
}

// Locate returns the first candidate found, or false when every strategy
// came up empty.
func (l *Locator) Locate(doc *goquery.Document) (*Candidate, bool) {
	if doc == nil {
		return nil, false
	}
	for _, s := range l.strategies {
		sel := s.Find(doc)
		if sel == nil || sel.Length() == 0 {
			continue
		}
		l.logger.Debug("content region located", slog.String("strategy", s.Name()))
		return &Candidate{Selection: sel.First(), Strategy: s.Name()}, true
	}
	return nil, false
}
