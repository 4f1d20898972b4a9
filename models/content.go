package models

import "time"

// Content is a persisted scrape: the extraction result plus everything the
// application layers on top of it (translations, export state).
type Content struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Author      string `json:"author"`
	PublishDate string `json:"publish_date"`
	SiteName    string `json:"site_name"`
	HeaderImage string `json:"header_image"`

	TranslatedTitle       string `json:"translated_title"`
	TranslatedContent     string `json:"translated_content"`
	TranslatedDescription string `json:"translated_description"`

	NotionPageID string `json:"notion_page_id"`

	// ContentHash fingerprints Content so re-scrapes can tell whether the
	// page body changed.
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewContent copies an extraction result into a fresh record.
// ID, hash and timestamp are assigned by the store on Create.
func NewContent(r *ExtractionResult) *Content {
	return &Content{
		URL:         r.URL,
		Title:       r.Title,
		Content:     r.Content,
		Description: r.Description,
		Author:      r.Author,
		PublishDate: r.Date,
		SiteName:    r.SiteName,
		HeaderImage: r.HeaderImage,
	}
}

// Translated reports whether a translation has already been stored.
func (c *Content) Translated() bool {
	return c.TranslatedTitle != "" || c.TranslatedContent != ""
}
