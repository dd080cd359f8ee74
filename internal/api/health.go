// Copyright (c) 2026 Worklane. All rights reserved.

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/worklane/worklane/internal/platform/apperr"
	"github.com/worklane/worklane/internal/platform/postgres"
	"github.com/worklane/worklane/internal/platform/redis"
	"github.com/worklane/worklane/internal/platform/respond"
)

// readinessProbeTimeout bounds the dependency checks so a hung dependency
// cannot stall the probe itself.
const readinessProbeTimeout = 2 * time.Second

// HealthHandler serves the liveness and readiness probes.
//
// Liveness says "the process is up"; readiness says "the process can serve
// traffic", which requires its dependencies to answer.
type HealthHandler struct {
	db    *pgxpool.Pool
	redis *goredis.Client
}

// NewHealthHandler wires the probes. The redis client may be nil when no
// event sink is configured; readiness then skips that check.
func NewHealthHandler(db *pgxpool.Pool, redisClient *goredis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Liveness handles GET /health.
func (handler *HealthHandler) Liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, "OK", map[string]any{"status": "up"})
}

// Readiness handles GET /ready. It pings every configured dependency and
// returns 503 as soon as one fails.
func (handler *HealthHandler) Readiness(writer http.ResponseWriter, request *http.Request) {
	probeContext, cancel := context.WithTimeout(request.Context(), readinessProbeTimeout)
	defer cancel()

	checks := map[string]string{}

	if err := postgres.Ping(probeContext, handler.db); err != nil {
		respond.Error(writer, request, apperr.ServiceUnavailable("Database is unreachable"))
		return
	}
	checks["postgres"] = "up"

	if handler.redis != nil {
		if err := redis.Ping(probeContext, handler.redis); err != nil {
			respond.Error(writer, request, apperr.ServiceUnavailable("Event sink is unreachable"))
			return
		}
		checks["redis"] = "up"
	}

	respond.OK(writer, "Ready", map[string]any{"status": "ready", "checks": checks})
}
