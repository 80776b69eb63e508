// Package main implements the entry point for the GLB conversion API
// server, which accepts binary glTF uploads and converts them to OBJ
// archives on a bounded background worker pool.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/glbobx/glbobx-api/internal/config"
	"github.com/glbobx/glbobx-api/internal/platform/logger"
)

// main wires configuration, logging and the job manager together and
// runs the HTTP server until a shutdown signal arrives.
func main() {
	cfg, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app, err := newApplication(cfg, slog.Default())
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up application components.
// Returns the loaded config and any initialization error.
func initializeApp() (*config.Config, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up structured logging using the configured log level
	_, err = logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	// Log configuration details using structured logging
	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"workers", cfg.Jobs.WorkerConcurrency,
		"queue_size", cfg.Jobs.QueueSize,
		"job_timeout", cfg.Jobs.Timeout(),
		"retention", cfg.Jobs.Retention())

	return cfg, nil
}
