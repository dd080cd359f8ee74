// Copyright (c) 2026 Worklane. All rights reserved.

// Command api runs the Worklane backend: configuration, database pool,
// migrations, the optional Redis event sink, and the HTTP server with
// graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/worklane/worklane/internal/api"
	"github.com/worklane/worklane/internal/platform/config"
	"github.com/worklane/worklane/internal/platform/constants"
	"github.com/worklane/worklane/internal/platform/events"
	"github.com/worklane/worklane/internal/platform/migration"
	pgstore "github.com/worklane/worklane/internal/platform/postgres"
	redisstore "github.com/worklane/worklane/internal/platform/redis"
	"github.com/worklane/worklane/internal/platform/sec"
	"github.com/worklane/worklane/internal/users/account"
	"github.com/worklane/worklane/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Event Sink ─────────────────────────────────────────────────────
	// Redis when configured, otherwise events are discarded. The sink is
	// best-effort by contract, so a missing REDIS_URL degrades features
	// (reset-token delivery, audit fan-out) without blocking startup.
	var (
		rdb       *goredis.Client
		publisher events.Publisher = events.NoopPublisher{}
	)
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		publisher = events.NewRedisPublisher(rdb, log)
	} else {
		log.Warn("redis_url_not_set_events_discarded")
	}

	// ── 6. Token Codec ────────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	authService := auth.NewService(userRepository, tokenService, publisher, log)
	authHandler := auth.NewHandler(authService)

	profileRepository := account.NewProfileRepository(pool)
	accountService := account.NewService(profileRepository, log)
	accountHandler := account.NewHandler(accountService, authService)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	serverCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(serverCtx, cfg, log, authService, api.Handlers{
		Health:  api.NewHealthHandler(pool, rdb),
		Auth:    authHandler,
		Account: accountHandler,
	})

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.ListenAndServe() }()

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	// Block until OS signal or server error.
	select {
	case <-serverCtx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		must(log, err, "serve http")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
	}
	log.Info("server stopped")
}

// must aborts startup when a critical initialization step fails.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failed", slog.String("step", step), slog.Any("error", err))
		os.Exit(1)
	}
}
