// Copyright (c) 2026 Worklane. All rights reserved.

/*
Package events implements the best-effort notification fan-out.

Domain services publish lifecycle events (user registered, password reset)
onto named channels. Delivery is fire-and-forget: a publish failure is logged
and swallowed, and must never block or fail the primary request path.

Architecture:

  - Publisher: The narrow contract injected into domain services.
  - RedisPublisher: Pub/sub implementation over go-redis.
  - NoopPublisher: Used when no Redis URL is configured.
*/
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/worklane/worklane/pkg/uuid"
)

// publishTimeout bounds how long a publish may hold up its goroutine.
const publishTimeout = 2 * time.Second

// Publisher is the event-sink contract used by domain services.
//
// Implementations must be safe for concurrent use. Callers are expected to
// ignore the returned error on the request path; it exists for tests and for
// callers that want to log at their own level.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// Envelope is the wire form of every published event.
type Envelope struct {
	ID         string      `json:"id"`
	Channel    string      `json:"channel"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// # Redis Implementation

// RedisPublisher publishes events onto Redis pub/sub channels.
type RedisPublisher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisPublisher creates a Redis-backed [Publisher].
func NewRedisPublisher(client *redis.Client, logger *slog.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger}
}

// Publish marshals the payload into an [Envelope] and fans it out.
//
// Failures are logged server-side and returned, but subscribers are
// best-effort by contract: nothing upstream treats the error as fatal.
func (publisher *RedisPublisher) Publish(ctx context.Context, channel string, payload interface{}) error {
	envelope := Envelope{
		ID:         uuid.New(),
		Channel:    channel,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		publisher.logger.Warn("event_marshal_failed",
			slog.String("channel", channel),
			slog.Any("error", err),
		)
		return fmt.Errorf("events: marshal failed: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := publisher.client.Publish(publishCtx, channel, body).Err(); err != nil {
		publisher.logger.Warn("event_publish_failed",
			slog.String("channel", channel),
			slog.Any("error", err),
		)
		return fmt.Errorf("events: publish failed: %w", err)
	}

	return nil
}

// # No-op Implementation

// NoopPublisher discards every event. It backs deployments without Redis.
type NoopPublisher struct{}

// Publish implements [Publisher] by doing nothing.
func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
