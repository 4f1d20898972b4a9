// Package webhook delivers signed event notifications to a configured
// endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Event types.
const (
	EventContentScraped  = "content.scraped"
	EventContentExported = "content.exported"
	EventBatchCompleted  = "batch.completed"
)

// SignatureHeader carries "sha256=<hex>" of the request body when a
// secret is configured.
const SignatureHeader = "X-Clipper-Signature"

// DefaultDelays is the wait before each delivery attempt.
var DefaultDelays = []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	ID        string `json:"id"` // content id or batch id
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ, id string, data any) *Event {
	return &Event{Type: typ, ID: id, Timestamp: time.Now().Unix(), Data: data}
}

// Notifier posts events to one endpoint. A nil *Notifier or one with an
// empty URL drops events silently.
type Notifier struct {
	url    string
	secret string
	delays []time.Duration
	client *http.Client
	logger *slog.Logger
}

// New builds a Notifier. delays nil means DefaultDelays.
func New(url, secret string, delays []time.Duration, logger *slog.Logger) *Notifier {
	if delays == nil {
		delays = DefaultDelays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		url:    url,
		secret: secret,
		delays: delays,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Enabled reports whether events will be sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.url != ""
}

// Deliver sends a webhook event synchronously.
func (n *Notifier) Deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Clipper-Webhook/1.0")

	if n.secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(n.secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// DeliverAsync sends event in the background, retrying on the configured
// delay schedule. The returned channel is closed once delivery succeeds or
// every attempt has failed.
func (n *Notifier) DeliverAsync(event *Event) <-chan struct{} {
	done := make(chan struct{})
	if !n.Enabled() {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		for attempt, delay := range n.delays {
			if delay > 0 {
				time.Sleep(delay)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := n.Deliver(ctx, event)
			cancel()
			if err == nil {
				n.logger.Info("webhook delivered",
					"url", n.url,
					"event", event.Type,
					"id", event.ID,
					"attempt", attempt+1,
				)
				return
			}
			n.logger.Warn("webhook delivery failed",
				"url", n.url,
				"event", event.Type,
				"id", event.ID,
				"attempt", attempt+1,
				"error", err,
			)
		}
		n.logger.Error("webhook delivery exhausted all retries",
			"url", n.url,
			"event", event.Type,
			"id", event.ID,
		)
	}()
	return done
}
