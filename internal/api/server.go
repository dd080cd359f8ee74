// Copyright (c) 2026 Worklane. All rights reserved.

/*
Package api assembles the HTTP surface of the Worklane backend.

It owns the router, the global middleware chain, and the mapping from URL
namespaces to domain handlers. Domain packages contribute sub-routers; this
package decides where they live.

# Middleware Order

Request ID first so every later log line can be correlated, then logging,
timeout, rate limiting, panic recovery, optional identity resolution, and
CORS. Optional authentication runs globally so any handler can read the
caller's identity; the strict gates live on individual route groups.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/worklane/worklane/internal/platform/config"
	"github.com/worklane/worklane/internal/platform/constants"
	"github.com/worklane/worklane/internal/platform/middleware"
	"github.com/worklane/worklane/internal/users/account"
	"github.com/worklane/worklane/internal/users/auth"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health  *HealthHandler
	Auth    *auth.Handler
	Account *account.Handler
}

// Server wraps the configured http.Server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

/*
NewServer builds the fully wired HTTP server.

Parameters:
  - context: context.Context, parent for the rate limiter's janitor
  - cfg: *config.Config
  - logger: *slog.Logger
  - resolver: middleware.IdentityResolver
  - handlers: Handlers

Returns:
  - *Server: Ready to ListenAndServe
*/
func NewServer(context context.Context, cfg *config.Config, logger *slog.Logger, resolver middleware.IdentityResolver, handlers Handlers) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(context))
	router.Use(middleware.PanicRecovery(logger))
	router.Use(middleware.OptionalAuthenticate(resolver))
	router.Use(middleware.CORS(cfg))
	router.Use(chimw.CleanPath)

	router.Get("/health", handlers.Health.Liveness)
	router.Get("/ready", handlers.Health.Readiness)

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Mount("/auth", handlers.Auth.Routes())
		v1.Mount("/users", handlers.Account.Routes())
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
		logger: logger,
	}
}

// ListenAndServe starts accepting connections. It blocks until the server
// stops and filters out the expected ErrServerClosed.
func (server *Server) ListenAndServe() error {
	server.logger.Info("http server listening", "addr", server.httpServer.Addr)
	if err := server.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (server *Server) Shutdown(context context.Context) error {
	return server.httpServer.Shutdown(context)
}
