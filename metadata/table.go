package metadata

import "strings"

// Field names an output slot of Fields.
type Field string

const (
	Title       Field = "title"
	Description Field = "description"
	Author      Field = "author"
	Date        Field = "date"
	HeaderImage Field = "header_image"
	SiteName    Field = "site_name"
)

// Hint maps a source key (a meta tag property/name, or a dotted JSON-LD
// path) onto an output field.
type Hint struct {
	Key   string
	Field Field
}

// Table is the ordered set of hints consulted during extraction. Earlier
// hints outrank later ones for the same field.
//
// A Table is built once and shared read-only between extractions.
type Table struct {
	meta []Hint
	ld   []Hint
}

// NewTable builds a table from meta-tag hints and structured-data hints,
// each in priority order. Meta keys are matched case-insensitively.
func NewTable(meta, ld []Hint) *Table {
	t := &Table{
		meta: make([]Hint, len(meta)),
		ld:   make([]Hint, len(ld)),
	}
	for i, h := range meta {
		t.meta[i] = Hint{Key: strings.ToLower(h.Key), Field: h.Field}
	}
	copy(t.ld, ld)
	return t
}

// MetaHints returns a copy of the meta-tag hints in priority order.
func (t *Table) MetaHints() []Hint {
	return append([]Hint(nil), t.meta...)
}

// StructuredHints returns a copy of the JSON-LD hints in priority order.
func (t *Table) StructuredHints() []Hint {
	return append([]Hint(nil), t.ld...)
}

// DefaultTable returns the built-in priority table.
//
// Open Graph outranks Twitter cards, which outrank bare HTML meta names.
// JSON-LD only fills what the meta tags left empty, author and publisher first.
func DefaultTable() *Table {
	return NewTable(
		[]Hint{
			{"og:title", Title},
			{"twitter:title", Title},
			{"title", Title},
			{"dc.title", Title},

			{"author", Author},
			{"article:author", Author},
			{"twitter:creator", Author},
			{"dc.creator", Author},

			{"og:description", Description},
			{"description", Description},
			{"twitter:description", Description},

			{"article:published_time", Date},
			{"datePublished", Date},
			{"date", Date},
			{"pubdate", Date},
			{"dc.date", Date},
			{"article:modified_time", Date},

			{"og:site_name", SiteName},
			{"application-name", SiteName},

			{"og:image", HeaderImage},
			{"og:image:url", HeaderImage},
			{"og:image:secure_url", HeaderImage},
			{"twitter:image", HeaderImage},
			{"twitter:image:src", HeaderImage},
		},
		[]Hint{
			{"author", Author},
			{"creator", Author},
			{"publisher", SiteName},
			{"headline", Title},
			{"description", Description},
			{"datePublished", Date},
			{"dateCreated", Date},
			{"image", HeaderImage},
			{"thumbnailUrl", HeaderImage},
		},
	)
}
