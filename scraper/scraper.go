// Package scraper fetches pages and runs the extraction pipeline over them,
// retrying failed attempts under a backoff policy.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/use-agent/clipper/models"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
)

// Options tune a single Scrape call. Zero values fall back to the
// Scraper's defaults.
type Options struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

// Scraper drives fetch → extract → validate attempts. It holds no mutable
// state and may be shared across goroutines.
type Scraper struct {
	fetcher     Fetcher
	pipeline    *Pipeline
	backoff     BackoffPolicy
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBackoff sets the delay policy between attempts.
func WithBackoff(b BackoffPolicy) Option {
	return func(s *Scraper) { s.backoff = b }
}

// WithMaxAttempts sets the default attempt bound.
func WithMaxAttempts(n int) Option {
	return func(s *Scraper) { s.maxAttempts = n }
}

// WithRetryDelay sets the default base delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Scraper) { s.retryDelay = d }
}

// WithLogger sets the logger for attempt diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// New returns a Scraper. A nil pipeline means DefaultPipeline.
func New(fetcher Fetcher, pipeline *Pipeline, opts ...Option) *Scraper {
	if pipeline == nil {
		pipeline = DefaultPipeline()
	}
	s := &Scraper{
		fetcher:     fetcher,
		pipeline:    pipeline,
		backoff:     Constant{},
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	pipeline.logger = s.logger
	return s
}

// Scrape fetches targetURL and extracts it, retrying retryable failures.
// After the last attempt it returns an EXTRACTION_EXHAUSTED error wrapping
// the final underlying error. Non-retryable failures and context
// cancellation end the loop early.
func (s *Scraper) Scrape(ctx context.Context, targetURL string, opts Options) (*models.ExtractionResult, error) {
	if err := validateURL(targetURL); err != nil {
		return nil, err
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = s.maxAttempts
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = s.retryDelay
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := s.attempt(ctx, targetURL)
		if err == nil {
			if attempt > 1 {
				s.logger.Info("scrape succeeded after retry",
					slog.String("url", targetURL), slog.Int("attempt", attempt))
			}
			return result, nil
		}
		lastErr = err

		if !models.IsRetryable(err) {
			return nil, err
		}

		s.logger.Warn("scrape attempt failed",
			slog.String("url", targetURL),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.String("error", err.Error()),
		)

		if attempt == maxAttempts {
			break
		}

		wait := s.backoff.Delay(delay, attempt)
		if err := sleep(ctx, wait); err != nil {
			return nil, models.NewScrapeError(models.ErrCodeInternal, "scrape cancelled", err)
		}
	}

	return nil, models.NewScrapeError(models.ErrCodeExhausted,
		fmt.Sprintf("extraction failed after %d attempts: %v", maxAttempts, lastErr), lastErr)
}

// attempt runs one Fetching → Extracting → Validating pass.
func (s *Scraper) attempt(ctx context.Context, targetURL string) (*models.ExtractionResult, error) {
	page, err := s.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		if models.ErrorCode(err) == models.ErrCodeInternal {
			err = models.NewScrapeError(models.ErrCodeNetwork, "fetch failed", err)
		}
		return nil, err
	}

	result, err := s.pipeline.Extract(page, targetURL)
	if err != nil {
		return nil, err
	}

	coerced := ensurePortable(result)
	if len(coerced) > 0 {
		s.logger.Warn("coerced fields to valid UTF-8",
			slog.String("url", targetURL), slog.Any("fields", coerced))
	}
	return result, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeInvalidInput, "invalid url", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("url must be absolute http(s): %q", raw), nil)
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
