// Package main is the entry point for the LocalLynk backend.
//
// The main package is kept minimal — its job is to:
// 1. Load configuration (internal/config — .env file + environment)
// 2. Create the logger
// 3. Create and start the server
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, etc.). This separation keeps the app testable and its
// components reusable.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mahirfaisal/locallynk/internal/config"
	"github.com/mahirfaisal/locallynk/internal/server"
)

func main() {
	// slog.NewTextHandler outputs human-readable logs to the terminal.
	// In production you'd raise the level to Info or Warn to cut noise.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Config is read from the environment exactly once, here. A missing or
	// too-short JWT_SECRET is fatal: silently falling back to a default
	// secret would make every deployed session forgeable.
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure the database directory exists (like `mkdir -p`).
	// ":memory:" has no directory; filepath.Dir returns "." for it, which
	// MkdirAll treats as a no-op.
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(cfg.DBPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server shuts down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
