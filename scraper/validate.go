package scraper

import (
	"strings"
	"unicode/utf8"

	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/textnorm"
)

var fieldNames = []string{"url", "title", "content", "description", "author", "date", "header_image", "site_name"}

// ensurePortable makes every field of r encodable as JSON text. Invalid
// UTF-8 is replaced rather than retried: the bytes will not improve on a
// second fetch. It returns the names of the fields it changed.
func ensurePortable(r *models.ExtractionResult) []string {
	var changed []string
	for i, f := range r.Fields() {
		if utf8.ValidString(*f) {
			continue
		}
		*f = textnorm.StripControl(strings.ToValidUTF8(*f, "\uFFFD"))
		changed = append(changed, fieldNames[i])
	}
	return changed
}
