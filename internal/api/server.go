// Package api provides the HTTP API server and handlers for the Relay
// application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/relaychat/relay-server/internal/config"
	"github.com/relaychat/relay-server/internal/http/response"
	"github.com/relaychat/relay-server/internal/sse"
	"github.com/relaychat/relay-server/internal/store"
)

// Version is the API version reported in the OpenAPI document.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store             *store.Store
	services          *Services
	sseHandler        *sse.Handler
	router            *chi.Mux
	api               huma.API
	searchRateLimiter *RateLimiter
	logger            *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, store *store.Store, services *Services, sseHandler *sse.Handler, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig(cfg.Server.Name+" API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:             store,
		services:          services,
		sseHandler:        sseHandler,
		router:            router,
		api:               api,
		searchRateLimiter: NewRateLimiter(cfg.RateLimit.SearchRPS, cfg.RateLimit.SearchBurst),
		logger:            logger,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerChannelRoutes()
	s.registerGroupRoutes()
	s.registerTeamRoutes()
	s.registerStatusRoutes()
	s.registerProfileRoutes()
	s.registerEventRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// registerHealthRoutes mounts the health check.
func (s *Server) registerHealthRoutes() {
	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"}, s.logger)
	})
}

// registerEventRoutes mounts the SSE stream.
func (s *Server) registerEventRoutes() {
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	})
}
