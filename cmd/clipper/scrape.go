package main

import (
	"encoding/json"
	"fmt"

	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/scraper"
)

// Run scrapes one URL and writes the extraction result to stdout.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	sc, err := newScraper(deps.Config, deps.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialise scraper: %w", err)
	}

	result, err := sc.Scrape(deps.Ctx, c.URL, scraper.Options{MaxAttempts: c.Attempts})
	if err != nil {
		return err
	}

	if c.Format == "markdown" {
		md, err := cleaner.NewMarkdown().Convert(result.Content, result.URL)
		if err != nil {
			return fmt.Errorf("convert to markdown: %w", err)
		}
		result.Content = md
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}
