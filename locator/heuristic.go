package locator

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultKeywords are class/id substrings that suggest a content container.
var DefaultKeywords = []string{"content", "article", "entry", "post"}

// boilerplatePatterns veto a keyword match: "sidebar-content" or
// "related-posts" name a container, but not the article.
var boilerplatePatterns = []string{
	"sidebar", "widget", "nav", "menu", "comment", "footer",
	"banner", "popup", "modal", "cookie", "share", "related",
	"recommend", "promo",
}

// blockContainers are the elements a keyword match may select. Inline tags
// and the body itself carry theme classes like "post-link" or
// "post-template" that say nothing about where the article is.
const blockContainers = "div, section, article, main, td"

// KeywordStrategy returns the first block container, in document order, whose
// class or id contains one of its keywords.
type KeywordStrategy struct {
	keywords   []string
	containers string
}

// Keywords builds a KeywordStrategy. Matching is case-insensitive.
func Keywords(keywords ...string) *KeywordStrategy {
	k := &KeywordStrategy{keywords: make([]string, len(keywords)), containers: blockContainers}
	for i, w := range keywords {
		k.keywords[i] = strings.ToLower(w)
	}
	return k
}

func (k *KeywordStrategy) Name() string { return "keyword" }

func (k *KeywordStrategy) Find(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find(k.containers).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		attrs := strings.ToLower(s.AttrOr("class", "") + " " + s.AttrOr("id", ""))
		if !containsAny(attrs, k.keywords) || containsAny(attrs, boilerplatePatterns) {
			return true
		}
		if strings.TrimSpace(s.Text()) == "" && s.Find("img").Length() == 0 {
			return true
		}
		found = s
		return false
	})
	return found
}

// LargestTextStrategy returns the block container with the most visible
// text. Outer wrappers tend to win; it is the last resort of the chain.
type LargestTextStrategy struct {
	containers string
}

// LargestText scans div and section elements.
func LargestText() *LargestTextStrategy {
	return &LargestTextStrategy{containers: "div, section"}
}

func (l *LargestTextStrategy) Name() string { return "largest-text" }

func (l *LargestTextStrategy) Find(doc *goquery.Document) *goquery.Selection {
	var (
		best    *goquery.Selection
		bestLen int
	)
	doc.Find(l.containers).Each(func(_ int, s *goquery.Selection) {
		if n := visibleTextLen(s); n > bestLen {
			best, bestLen = s, n
		}
	})
	return best
}

// visibleTextLen counts non-space runes under s, skipping script and style
// bodies.
func visibleTextLen(s *goquery.Selection) int {
	n := 0
	for _, node := range s.Nodes {
		n += textLen(node)
	}
	return n
}

func textLen(n *html.Node) int {
	switch n.Type {
	case html.TextNode:
		c := 0
		for _, r := range n.Data {
			if !unicode.IsSpace(r) {
				c++
			}
		}
		return c
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return 0
		}
	}
	c := 0
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c += textLen(child)
	}
	return c
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
