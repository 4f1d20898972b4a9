package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeNetwork      = "NETWORK_ERROR"
	ErrCodeExtraction   = "CONTENT_EXTRACTION_FAILED"
	ErrCodeExhausted    = "EXTRACTION_EXHAUSTED"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"

	// Collaborator failures (export client, translator).
	ErrCodeExportFailed      = "EXPORT_FAILED"
	ErrCodeTranslationFailed = "TRANSLATION_FAILED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// ErrorCode returns the code of the outermost ScrapeError in err's chain,
// or ErrCodeInternal when there is none.
func ErrorCode(err error) string {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsRetryable reports whether a failed attempt may succeed on a later try.
// Network failures and missing content qualify; everything else is final.
func IsRetryable(err error) bool {
	switch ErrorCode(err) {
	case ErrCodeNetwork, ErrCodeExtraction:
		return true
	default:
		return false
	}
}
