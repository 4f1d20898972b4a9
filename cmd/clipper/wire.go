package main

import (
	"fmt"
	"log/slog"

	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/export"
	"github.com/use-agent/clipper/locator"
	"github.com/use-agent/clipper/metadata"
	"github.com/use-agent/clipper/scraper"
	"github.com/use-agent/clipper/store"
	"github.com/use-agent/clipper/translate"
)

// newScraper assembles fetcher, pipeline and retry policy from cfg.
func newScraper(cfg *config.Config, logger *slog.Logger) (*scraper.Scraper, error) {
	backoff, err := scraper.ParseBackoff(cfg.Scraper.Backoff)
	if err != nil {
		return nil, err
	}

	fetchOpts := []scraper.FetcherOption{
		scraper.WithTimeout(cfg.Scraper.FetchTimeout),
		scraper.WithMaxBodySize(cfg.Scraper.MaxBodySize),
		scraper.WithTLSFingerprint(cfg.Scraper.TLSFingerprint),
	}
	if cfg.Scraper.UserAgent != "" {
		fetchOpts = append(fetchOpts, scraper.WithUserAgent(cfg.Scraper.UserAgent))
	}
	if cfg.Scraper.Proxy != "" {
		fetchOpts = append(fetchOpts, scraper.WithProxy(cfg.Scraper.Proxy))
	}

	pipeline, err := newPipeline(cfg.Extraction, logger)
	if err != nil {
		return nil, err
	}

	return scraper.New(scraper.NewHTTPFetcher(fetchOpts...), pipeline,
		scraper.WithBackoff(backoff),
		scraper.WithMaxAttempts(cfg.Scraper.MaxAttempts),
		scraper.WithRetryDelay(cfg.Scraper.RetryDelay),
		scraper.WithLogger(logger),
	), nil
}

func newPipeline(cfg config.ExtractionConfig, logger *slog.Logger) (*scraper.Pipeline, error) {
	strategies := []locator.Strategy{
		locator.MustSelectors(locator.DefaultSelectors...),
		locator.Keywords(locator.DefaultKeywords...),
	}
	if cfg.Readability {
		strategies = append(strategies, locator.Readability(nil))
	}
	if cfg.Trafilatura {
		strategies = append(strategies, locator.Trafilatura(nil))
	}
	strategies = append(strategies, locator.LargestText())

	var rules []cleaner.Rule
	if len(cfg.ChatSelectors) > 0 {
		quote, err := cleaner.NewQuoteRule(cfg.ChatSelectors...)
		if err != nil {
			return nil, err
		}
		rules = append(rules, quote)
	}

	san := cleaner.NewSanitizer(cleaner.Config{
		RelatedKeywords: cfg.RelatedKeywords,
		Policy:          cfg.Policy,
	}, rules...).WithLogger(logger)

	return scraper.NewPipeline(
		metadata.NewExtractor(metadata.DefaultTable(), metadata.WithLogger(logger)),
		locator.New(strategies...).WithLogger(logger),
		san,
	), nil
}

// newStore opens SQLite when a path is configured, otherwise memory.
func newStore(cfg config.StoreConfig) (store.Store, error) {
	if cfg.SQLitePath == "" {
		return store.NewMemory(cfg.MaxEntries, cfg.TTL), nil
	}
	st, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store at %q: %w", cfg.SQLitePath, err)
	}
	return st, nil
}

func newTranslator(cfg config.TranslateConfig) translate.Translator {
	if cfg.APIKey == "" {
		return translate.Placeholder{}
	}
	return translate.NewLLM(translate.LLMConfig{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		Model:          cfg.Model,
		TargetLanguage: cfg.TargetLanguage,
	})
}

func newExporter(cfg config.NotionConfig, md *cleaner.Markdown, logger *slog.Logger) *export.Client {
	return export.New(export.Config{
		Token:      cfg.Token,
		DatabaseID: cfg.DatabaseID,
		BaseURL:    cfg.BaseURL,
		Version:    cfg.Version,
	}, md, logger)
}
