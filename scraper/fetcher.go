package scraper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/use-agent/clipper/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

const (
	// DefaultFetchTimeout bounds a single fetch attempt.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize = 10 << 20
)

// Page is a fetched document, already decoded to UTF-8.
type Page struct {
	// URL is the final URL after redirects.
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves raw pages.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Ensure HTTPFetcher implements Fetcher at compile time.
var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher fetches pages over plain HTTP(S). When TLS fingerprinting is
// enabled, HTTPS connections present a Chrome ClientHello.
type HTTPFetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	fingerprint bool
	proxy       string
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) { f.timeout = d }
}

// WithUserAgent overrides the Chrome User-Agent.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// WithMaxBodySize caps the bytes read from a response body.
func WithMaxBodySize(n int64) FetcherOption {
	return func(f *HTTPFetcher) { f.maxBodySize = n }
}

// WithTLSFingerprint toggles the Chrome TLS fingerprint.
func WithTLSFingerprint(on bool) FetcherOption {
	return func(f *HTTPFetcher) { f.fingerprint = on }
}

// WithProxy routes requests through an HTTP(S) proxy.
func WithProxy(proxy string) FetcherOption {
	return func(f *HTTPFetcher) { f.proxy = proxy }
}

// NewHTTPFetcher builds an HTTPFetcher. The transport is created once and
// reused across requests.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		timeout:     DefaultFetchTimeout,
		userAgent:   chromeUA,
		maxBodySize: DefaultMaxBodySize,
		fingerprint: true,
	}
	for _, opt := range opts {
		opt(f)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if f.fingerprint {
		transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr)
		}
	}
	if f.proxy != "" {
		if proxyURL, err := url.Parse(f.proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	f.client = &http.Client{Transport: transport, Timeout: f.timeout}
	return f
}

// Fetch retrieves targetURL. Transport failures and non-2xx statuses are
// NETWORK_ERROR; a malformed URL is INVALID_INPUT.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "build request", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewScrapeError(models.ErrCodeNetwork,
			fmt.Sprintf("HTTP %d for %s", resp.StatusCode, targetURL), nil)
	}

	contentType := resp.Header.Get("Content-Type")
	limited := io.LimitReader(resp.Body, f.maxBodySize)
	reader, err := charset.NewReader(limited, contentType)
	if err != nil {
		// Unknown declared charset: read the bytes as they are.
		reader = limited
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeNetwork, "read body", err)
	}

	return &Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}
