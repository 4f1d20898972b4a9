// Package export writes stored content into a Notion database over the
// Notion REST API.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/models"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"

	// Notion rejects requests with more than 100 children or rich text
	// longer than 2000 characters.
	maxBlocks    = 100
	maxBlockText = 2000
)

// Properties that always come from the record itself.
const (
	titleProperty = "Title"
	urlProperty   = "URL"
)

// typeNames folds Notion property types into the set the UI renders.
// Types not listed pass through unchanged.
var typeNames = map[string]string{
	"title":        "text",
	"rich_text":    "text",
	"phone_number": "phone",
}

// Config configures a Client.
type Config struct {
	Token      string
	DatabaseID string
	BaseURL    string // defaults to DefaultBaseURL
	Version    string // Notion-Version header; defaults to DefaultVersion
	Timeout    time.Duration
}

// Client talks to one Notion database.
type Client struct {
	httpClient *http.Client
	cfg        Config
	markdown   *cleaner.Markdown
	logger     *slog.Logger
}

// New builds a Client. md renders stored markup into block text; nil
// builds a fresh converter.
func New(cfg Config, md *cleaner.Markdown, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if md == nil {
		md = cleaner.NewMarkdown()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		markdown:   md,
		logger:     logger,
	}
}

type databaseResponse struct {
	Properties map[string]struct {
		ID          string         `json:"id"`
		Type        string         `json:"type"`
		Select      *optionsHolder `json:"select"`
		MultiSelect *optionsHolder `json:"multi_select"`
	} `json:"properties"`
}

type optionsHolder struct {
	Options []struct {
		Name string `json:"name"`
	} `json:"options"`
}

// Properties returns the database schema keyed by property name.
func (c *Client) Properties(ctx context.Context) (map[string]models.Property, error) {
	if c.cfg.DatabaseID == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "notion database id is not configured", nil)
	}

	var db databaseResponse
	if err := c.do(ctx, http.MethodGet, "/databases/"+c.cfg.DatabaseID, nil, &db); err != nil {
		return nil, err
	}

	props := make(map[string]models.Property, len(db.Properties))
	for name, p := range db.Properties {
		prop := models.Property{ID: p.ID, Name: name, Type: p.Type}
		if t, ok := typeNames[p.Type]; ok {
			prop.Type = t
		}
		holder := p.Select
		if p.Type == "multi_select" {
			holder = p.MultiSelect
		}
		if holder != nil && (p.Type == "select" || p.Type == "multi_select") {
			for _, o := range holder.Options {
				prop.Options = append(prop.Options, models.PropertyOption{Label: o.Name, Value: o.Name})
			}
		}
		props[name] = prop
	}
	return props, nil
}

// CreatePage creates a database page for rec and returns its id. Title and
// URL always come from rec; other caller properties are passed through as
// Notion property values.
func (c *Client) CreatePage(ctx context.Context, rec *models.Content, props map[string]any) (string, error) {
	if c.cfg.DatabaseID == "" {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "notion database id is not configured", nil)
	}

	properties := map[string]any{
		titleProperty: map[string]any{
			"title": []any{richText(rec.Title)},
		},
		urlProperty: map[string]any{
			"url": rec.URL,
		},
	}
	for name, v := range props {
		if name == titleProperty || name == urlProperty {
			continue
		}
		properties[name] = v
	}

	payload := map[string]any{
		"parent":     map[string]any{"database_id": c.cfg.DatabaseID},
		"properties": properties,
	}
	if blocks := c.blocks(rec); len(blocks) > 0 {
		payload["children"] = blocks
	}

	var page struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/pages", payload, &page); err != nil {
		return "", err
	}
	if page.ID == "" {
		return "", models.NewScrapeError(models.ErrCodeExportFailed, "notion returned no page id", nil)
	}
	return page.ID, nil
}

// blocks renders rec's content as paragraph blocks.
func (c *Client) blocks(rec *models.Content) []any {
	if strings.TrimSpace(rec.Content) == "" {
		return nil
	}
	md, err := c.markdown.Convert(rec.Content, rec.URL)
	if err != nil {
		c.logger.Warn("markdown conversion failed, exporting without body",
			"url", rec.URL,
			"error", err,
		)
		return nil
	}

	var out []any
	for _, para := range paragraphs(md) {
		for _, chunk := range chunk(para, maxBlockText) {
			if len(out) == maxBlocks {
				return out
			}
			out = append(out, map[string]any{
				"object": "block",
				"type":   "paragraph",
				"paragraph": map[string]any{
					"rich_text": []any{richText(chunk)},
				},
			})
		}
	}
	return out
}

func richText(s string) map[string]any {
	return map[string]any{"type": "text", "text": map[string]any{"content": s}}
}

// paragraphs splits Markdown on blank lines.
func paragraphs(md string) []string {
	var out []string
	for _, p := range strings.Split(md, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// chunk splits s into pieces of at most n runes.
func chunk(s string, n int) []string {
	r := []rune(s)
	if len(r) <= n {
		return []string{s}
	}
	var out []string
	for len(r) > n {
		out = append(out, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Notion-Version", c.cfg.Version)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeExportFailed, "notion request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeExportFailed, "failed to read notion response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return classifyError(resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return models.NewScrapeError(models.ErrCodeExportFailed, "failed to parse notion response", err)
	}
	return nil
}

func classifyError(statusCode int, body []byte) *models.ScrapeError {
	msg := "notion API error"
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		msg = e.Message
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return models.NewScrapeError(models.ErrCodeUnauthorized, msg, nil)
	case http.StatusTooManyRequests:
		return models.NewScrapeError(models.ErrCodeRateLimited, msg, nil)
	case http.StatusNotFound:
		return models.NewScrapeError(models.ErrCodeNotFound, msg, nil)
	default:
		return models.NewScrapeError(models.ErrCodeExportFailed, fmt.Sprintf("notion API returned %d: %s", statusCode, msg), nil)
	}
}
