// Package api provides the HTTP API server and handlers for the HomeShelf application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/homeshelf/homeshelf-server/internal/export"
	"github.com/homeshelf/homeshelf-server/internal/http/response"
	"github.com/homeshelf/homeshelf-server/internal/service"
	"github.com/homeshelf/homeshelf-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	library   *service.LibraryService
	exporter  *export.Pipeline
	validator *validation.Validator
	router    *chi.Mux
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(library *service.LibraryService, exporter *export.Pipeline, logger *slog.Logger) *Server {
	s := &Server{
		library:   library,
		exporter:  exporter,
		validator: validation.New(),
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	s.router.Use(RateLimitMiddleware(NewRateLimiter(300, time.Minute, 100), s.logger))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Post("/", s.handleAddBook)
			r.Get("/", s.handleListBooks)
			r.Patch("/{id}", s.handleUpdateBook)
			r.Post("/{id}/read", s.handleRecordRead)
			r.Post("/read-by-isbn", s.handleReadByISBN)
		})

		r.Get("/export", s.handleExport)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
