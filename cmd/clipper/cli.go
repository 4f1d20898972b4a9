package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/use-agent/clipper/config"
)

// Dependencies holds configuration and I/O for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config
	Logger *slog.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Serve  ServeCmd  `cmd:"" help:"Run the HTTP API server"`
	Scrape ScrapeCmd `cmd:"" help:"Scrape one URL and print the record as JSON"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Host string `help:"Listen host (overrides CLIPPER_HOST)"`
	Port int    `help:"Listen port (overrides CLIPPER_PORT)"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL      string `arg:"" help:"Page URL"`
	Format   string `short:"f" enum:"html,markdown" default:"html" help:"Content format (html or markdown)"`
	Attempts int    `short:"a" help:"Maximum fetch attempts (overrides CLIPPER_MAX_ATTEMPTS)"`
}
