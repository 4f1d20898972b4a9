package models

// ExtractionResult is the normalized record produced by one scrape.
//
// Every field is always serialized (no omitempty): consumers rely on the key
// being present even when the page offered nothing for it.
type ExtractionResult struct {
	// URL is the source URL the page was fetched from.
	URL string `json:"url"`

	Title string `json:"title"`

	// Content is the sanitized article markup (or markdown, when requested).
	Content string `json:"content"`

	Description string `json:"description"`
	Author      string `json:"author"`

	// Date is a best-effort ISO-8601 string, or empty.
	Date string `json:"date"`

	// HeaderImage is an absolute URL, or empty.
	HeaderImage string `json:"header_image"`

	SiteName string `json:"site_name"`
}

// Fields returns pointers to every string field, in declaration order.
// Used by passes that must touch all of them uniformly (validation, coercion).
func (r *ExtractionResult) Fields() []*string {
	return []*string{
		&r.URL, &r.Title, &r.Content, &r.Description,
		&r.Author, &r.Date, &r.HeaderImage, &r.SiteName,
	}
}
