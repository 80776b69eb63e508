package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/glbobx/glbobx-api/internal/api"
	apiMiddleware "github.com/glbobx/glbobx-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Browser viewers upload straight from their own origins
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Use(apiMiddleware.RateLimitMiddleware(app.limiter))

	// Create API handlers using the application's services
	jobHandler := api.NewJobHandler(app.jobManager, app.config.Upload.MaxUploadBytes)
	healthHandler := api.NewHealthHandler(app.jobManager)

	// Register routes
	r.Post("/convert", jobHandler.SubmitConversion)
	r.Get("/jobs/{id}", jobHandler.GetJob)
	r.Get("/jobs/{id}/download", jobHandler.DownloadArchive)

	// Health check endpoint
	r.Get("/healthz", healthHandler.Health)

	return r
}
