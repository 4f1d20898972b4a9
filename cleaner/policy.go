package cleaner

import (
	"github.com/microcosm-cc/bluemonday"
)

// newPolicy returns the UGC policy extended with the presentation attributes
// the sanitizer adds. A built policy is safe for concurrent Sanitize calls.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("loading").Matching(bluemonday.SpaceSeparatedTokens).OnElements("img")
	p.AllowElements("article", "section", "main", "figure", "figcaption")
	return p
}
