package main

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/glbobx/glbobx-api/internal/config"
	"github.com/glbobx/glbobx-api/internal/converter"
	"github.com/glbobx/glbobx-api/internal/job"
	"github.com/glbobx/glbobx-api/internal/platform/memstore"
	"github.com/glbobx/glbobx-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger

	// Stores (using interfaces for proper abstraction)
	jobStore store.JobStore

	// Job execution
	jobManager *job.Manager

	// Global request throttle
	limiter *rate.Limiter
}

// newApplication creates a new application instance with all dependencies
// initialized and the worker pool already running.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	// Initialize the in-memory job store
	app.jobStore = memstore.NewMemoryJobStore(logger)

	// Initialize the job manager around the GLB converter
	app.jobManager = job.NewManager(app.jobStore, converter.Convert, job.ManagerConfig{
		WorkerCount:   cfg.Jobs.WorkerConcurrency,
		QueueSize:     cfg.Jobs.QueueSize,
		JobTimeout:    cfg.Jobs.Timeout(),
		Retention:     cfg.Jobs.Retention(),
		SweepInterval: cfg.Jobs.SweepInterval(),
	}, logger)
	app.jobManager.Start()

	// One token bucket for the whole process
	app.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	return app.startHTTPServer(ctx, router)
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobManager != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownGrace())
		defer cancel()
		if err := app.jobManager.Stop(stopCtx); err != nil {
			app.logger.Error("Error stopping job manager", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
