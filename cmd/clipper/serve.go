package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/clipper/api"
	"github.com/use-agent/clipper/api/handler"
	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/webhook"
)

// Run starts the API server and blocks until SIGINT/SIGTERM or the
// parent context ends.
func (c *ServeCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	logger := deps.Logger
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	logger.Info("clipper starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
	)

	sc, err := newScraper(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise scraper: %w", err)
	}

	st, err := newStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	md := cleaner.NewMarkdown()
	d := &handler.Deps{
		Scraper:    sc,
		Store:      st,
		Markdown:   md,
		Translator: newTranslator(cfg.Translate),
		Exporter:   newExporter(cfg.Notion, md, logger),
		Logger:     logger,
	}
	if cfg.Webhook.URL != "" {
		d.Webhook = webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret, cfg.Webhook.Delays, logger)
	}

	router := api.NewRouter(d, cfg, time.Now())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(deps.Ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr, "store", st.Kind())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	// Give in-flight requests 5 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced shutdown", "error", err)
	} else {
		logger.Info("HTTP server drained gracefully")
	}
	logger.Info("clipper stopped")
	return nil
}
