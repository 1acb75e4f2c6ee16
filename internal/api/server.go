// Package api provides the HTTP boundary of the taplist server: it decodes
// operator input into typed workflow events and exposes read and delete
// surfaces over taps and history. It renders nothing; front ends do that.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taplistapp/taplist-server/internal/service"
	"github.com/taplistapp/taplist-server/internal/workflow"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine  *workflow.Engine
	taps    *service.TapService
	history *service.HistoryService
	router  *chi.Mux
	api     huma.API
	logger  *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(engine *workflow.Engine, taps *service.TapService, history *service.HistoryService, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		engine:  engine,
		taps:    taps,
		history: history,
		router:  router,
		logger:  logger,
	}

	// Middleware must be attached before humachi.New registers routes on the
	// mux; chi panics if Use is called after the first route.
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Taplist API", "1.0.0")
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerWorkflowRoutes()
	s.registerTapRoutes()
	s.registerHistoryRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// === Health ===

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status string `json:"status" doc:"Overall status: healthy or unhealthy"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	// A cheap registry read proves the database file is reachable.
	if _, err := s.taps.List(ctx); err != nil {
		return &HealthOutput{Body: HealthResponse{Status: "unhealthy"}}, nil
	}
	return &HealthOutput{Body: HealthResponse{Status: "healthy"}}, nil
}
