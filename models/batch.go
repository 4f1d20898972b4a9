package models

// MaxBatchURLs bounds the size of a single batch request.
const MaxBatchURLs = 20

// Batch job states.
const (
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchPartial    = "partial"
	BatchFailed     = "failed"
)

// BatchRequest is the payload for POST /api/batch/scrape.
type BatchRequest struct {
	// URLs is the list of target pages to scrape. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=20,dive,url"`

	// Format applies to every URL, as in ScrapeRequest.
	Format string `json:"format,omitempty" binding:"omitempty,oneof=html markdown"`
}

// BatchResponse is the immediate response for POST /api/batch/scrape.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchItem is the outcome of one URL in a batch.
type BatchItem struct {
	URL     string       `json:"url"`
	Success bool         `json:"success"`
	Content *Content     `json:"content,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// BatchStatusResponse is the response for GET /api/batch/:id.
type BatchStatusResponse struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Results   []*BatchItem `json:"results,omitempty"`
}

// BatchJob tracks an in-progress batch scrape operation.
type BatchJob struct {
	ID        string
	Status    string
	Total     int
	Completed int
	Results   []*BatchItem
	CreatedAt int64 // unix timestamp
}
