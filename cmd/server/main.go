// Package main is the entry point for the to-do server.
//
// main only reads configuration, builds the logger and starts the server;
// everything else lives under internal/.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/sakif/todo-app/internal/config"
	"github.com/sakif/todo-app/internal/server"
)

func main() {
	// Bootstrap logger until the configured one exists.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Refuse to start on bad config. In particular a missing or short
	// JWT_SECRET is fatal; there is no built-in fallback.
	//   JWT_SECRET=$(openssl rand -hex 32)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger = newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger builds the process logger from LOG_FORMAT and LOG_LEVEL. cfg
// has been validated, so the level parses.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
