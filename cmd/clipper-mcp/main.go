// Command clipper-mcp exposes a running clipper API as MCP tools over stdio.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("CLIPPER_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	c := &apiClient{
		baseURL: apiURL,
		apiKey:  os.Getenv("CLIPPER_API_KEY"),
		http:    &http.Client{Timeout: 600 * time.Second},
	}

	if err := server.ServeStdio(newServer(c)); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(c *apiClient) *server.MCPServer {
	s := server.NewMCPServer(
		"clipper",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("scrape_url",
		mcp.WithDescription("Scrape a web page and return its title, metadata and cleaned article body. Previously scraped pages are served from storage unless refresh is set."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithString("format",
			mcp.Description("Content format: 'html' (default, sanitized markup) or 'markdown'"),
			mcp.Enum("html", "markdown"),
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Scrape again even if the URL is already stored"),
		),
	), handleScrapeURL(c))

	s.AddTool(mcp.NewTool("batch_scrape",
		mcp.WithDescription("Scrape up to 20 URLs in parallel and return the cleaned content for each."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of URLs to scrape"),
		),
		mcp.WithString("format",
			mcp.Description("Content format: 'html' (default) or 'markdown'"),
			mcp.Enum("html", "markdown"),
		),
	), handleBatchScrape(c))

	s.AddTool(mcp.NewTool("translate_content",
		mcp.WithDescription("Translate a stored record's title, body and description. Returns the translated text."),
		mcp.WithString("content_id",
			mcp.Required(),
			mcp.Description("The id returned by scrape_url"),
		),
	), handleTranslate(c))

	s.AddTool(mcp.NewTool("save_to_notion",
		mcp.WithDescription("Export a stored record to the configured Notion database."),
		mcp.WithString("content_id",
			mcp.Required(),
			mcp.Description("The id returned by scrape_url"),
		),
		mcp.WithObject("properties",
			mcp.Description("Extra Notion page properties keyed by property name, in Notion's property value format"),
		),
	), handleSaveToNotion(c))

	return s
}
