// Copyright (c) 2026 CLinCoDa. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/CLinCoDa/Repositoria-SGPI/internal/convocatoria"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/config"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/constants"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/middleware"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/respond"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/solicitud"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/store"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/users"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the identity flows (login, password reset).
	Auth *auth.Handler

	// Convocatoria handles application-period management.
	Convocatoria *convocatoria.Handler

	// Solicitud handles IP registration requests.
	Solicitud *solicitud.Handler

	// Users handles account administration.
	Users *users.Handler

	// Stats serves the dashboard counters.
	Stats *store.Store
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes(middleware.RequireAuth))
		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth)
			protected.Mount("/convocatorias",
				h.Convocatoria.Routes(middleware.RequirePermission(users.CapGestionarConvocatorias)))
			protected.Mount("/solicitudes", h.Solicitud.Routes())
			protected.Get("/stats", statsHandler(h.Stats))
		})

		api.Group(func(admin chi.Router) {
			admin.Use(middleware.RequirePermission(users.CapGestionarUsuarios))
			admin.Mount("/users", h.Users.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// statsHandler serves the dashboard counters straight from the store.
func statsHandler(s *store.Store) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respond.OK(writer, s.Stats())
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
