package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/clipper/models"
)

// apiClient calls the clipper HTTP API.
type apiClient struct {
	baseURL string
	apiKey  string
	http    *http.Client

	// pollInterval defaults to 2s.
	pollInterval time.Duration
}

// call sends a request and decodes a 2xx body into out. Error bodies are
// returned as a "[CODE] message" error.
func (c *apiClient) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var e models.ErrorResponse
		if err := json.Unmarshal(respBody, &e); err == nil && e.Error != nil {
			return fmt.Errorf("[%s] %s", e.Error.Code, e.Error.Message)
		}
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// pollBatch polls a batch job until its status is no longer "processing" or
// ctx is cancelled.
func (c *apiClient) pollBatch(ctx context.Context, id string) (*models.BatchStatusResponse, error) {
	interval := c.pollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			var status models.BatchStatusResponse
			if err := c.call(ctx, http.MethodGet, "/api/batch/"+id, nil, &status); err != nil {
				return nil, err
			}
			if status.Status != models.BatchProcessing {
				return &status, nil
			}
		}
	}
}

// formatRecord renders a record with a metadata header.
func formatRecord(rec *models.Content) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID: %s\nTitle: %s\nSource: %s\n", rec.ID, rec.Title, rec.URL)
	for _, kv := range [][2]string{
		{"Author", rec.Author},
		{"Published", rec.PublishDate},
		{"Site", rec.SiteName},
		{"Description", rec.Description},
		{"Image", rec.HeaderImage},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&sb, "%s: %s\n", kv[0], kv[1])
		}
	}
	sb.WriteString("\n")
	sb.WriteString(rec.Content)
	return sb.String()
}

func handleScrapeURL(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := models.ScrapeRequest{
			URL:     url,
			Format:  request.GetString("format", ""),
			Refresh: request.GetBool("refresh", false),
		}

		var rec models.Content
		if err := c.call(ctx, http.MethodPost, "/api/scrape", payload, &rec); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatRecord(&rec)), nil
	}
}

func handleBatchScrape(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		payload := models.BatchRequest{URLs: urls, Format: request.GetString("format", "")}

		var batch models.BatchResponse
		if err := c.call(ctx, http.MethodPost, "/api/batch/scrape", payload, &batch); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}

		status, err := c.pollBatch(ctx, batch.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Batch %s: %s (%d/%d completed)\n\n", status.ID, status.Status, status.Completed, status.Total)
		for i, item := range status.Results {
			switch {
			case item == nil:
				fmt.Fprintf(&sb, "--- [%d] pending ---\n\n", i+1)
			case item.Success && item.Content != nil:
				fmt.Fprintf(&sb, "--- [%d] %s ---\n%s\n\n", i+1, item.Content.Title, item.Content.Content)
			default:
				msg := "unknown error"
				if item.Error != nil {
					msg = item.Error.Message
				}
				fmt.Fprintf(&sb, "--- [%d] FAILED %s: %s ---\n\n", i+1, item.URL, msg)
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleTranslate(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("content_id")
		if err != nil {
			return mcp.NewToolResultError("content_id is required"), nil
		}

		var rec models.Content
		if err := c.call(ctx, http.MethodPost, "/api/translate", models.TranslateRequest{ContentID: id}, &rec); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Title: %s\n", rec.TranslatedTitle)
		if rec.TranslatedDescription != "" {
			fmt.Fprintf(&sb, "Description: %s\n", rec.TranslatedDescription)
		}
		sb.WriteString("\n")
		sb.WriteString(rec.TranslatedContent)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleSaveToNotion(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("content_id")
		if err != nil {
			return mcp.NewToolResultError("content_id is required"), nil
		}

		payload := models.SaveToNotionRequest{ContentID: id}
		if props, ok := request.GetArguments()["properties"].(map[string]any); ok {
			payload.Properties = props
		}

		var resp models.SaveToNotionResponse
		if err := c.call(ctx, http.MethodPost, "/api/save-to-notion", payload, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Saved to Notion page " + resp.NotionPageID), nil
	}
}
