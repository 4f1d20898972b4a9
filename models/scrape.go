package models

// ScrapeRequest is the payload for POST /api/scrape.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// Refresh bypasses the stored record for URL and scrapes again.
	Refresh bool `json:"refresh,omitempty"`

	// Format selects the stored content representation.
	// "html" (default) keeps sanitized markup; "markdown" converts it.
	Format string `json:"format,omitempty" binding:"omitempty,oneof=html markdown"`
}

// TranslateRequest is the payload for POST /api/translate.
type TranslateRequest struct {
	ContentID string `json:"content_id" binding:"required"`
}

// SaveToNotionRequest is the payload for POST /api/save-to-notion.
type SaveToNotionRequest struct {
	ContentID string `json:"content_id" binding:"required"`

	// Properties are caller-chosen page properties keyed by property name.
	// Title and URL are always taken from the stored record.
	Properties map[string]any `json:"properties,omitempty"`
}

// SaveToNotionResponse is the response for POST /api/save-to-notion.
type SaveToNotionResponse struct {
	Success      bool   `json:"success"`
	NotionPageID string `json:"notion_page_id"`
}

// ErrorResponse wraps an ErrorDetail for JSON output.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
	Store   string `json:"store"`
}
