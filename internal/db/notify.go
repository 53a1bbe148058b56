package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/dbpool"
)

// ChangesChannel is the NOTIFY channel stores publish graph changes on.
const ChangesChannel = "graph_changes"

// EventGraphChanged is the event type used when a payload does not carry one.
const EventGraphChanged = "graph.changed"

const (
	initialBackoff    = 1 * time.Second
	maxBackoff        = 30 * time.Second
	backoffMultiplier = 2
	readDeadline      = 2 * time.Minute
)

// Broadcaster fans an event out to connected clients.
type Broadcaster interface {
	BroadcastEvent(eventType string, data json.RawMessage)
}

// ChangePayload is the JSON body stores send with pg_notify.
type ChangePayload struct {
	Type   string `json:"type,omitempty"`
	Table  string `json:"table"`
	Op     string `json:"op"`
	NodeID string `json:"node_id,omitempty"`
}

// NotifyBridge listens on ChangesChannel and forwards each payload to the
// WebSocket hub, so every server instance sees every write.
type NotifyBridge struct {
	log  *logrus.Logger
	pool *dbpool.Pool
	hub  Broadcaster
}

// NewNotifyBridge creates a NotifyBridge wired to the given pool and hub.
func NewNotifyBridge(log *logrus.Logger, pool *dbpool.Pool, hub Broadcaster) *NotifyBridge {
	return &NotifyBridge{log: log, pool: pool, hub: hub}
}

// Start checks the database is reachable and launches the LISTEN loop in
// the background. The loop reconnects with backoff until ctx is done.
func (b *NotifyBridge) Start(ctx context.Context) error {
	if err := b.pool.Ping(ctx); err != nil {
		return fmt.Errorf("notify bridge: database not reachable: %w", err)
	}

	go b.listen(ctx)

	return nil
}

func (b *NotifyBridge) listen(ctx context.Context) {
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		err := b.subscribeAndForward(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}

		b.log.WithError(err).WithField("retry_in", backoff).
			Warn("notify bridge connection lost, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff = nextBackoff(backoff)
	}
}

func (b *NotifyBridge) subscribeAndForward(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ChangesChannel}.Sanitize()); err != nil {
		return fmt.Errorf("executing LISTEN: %w", err)
	}

	b.log.WithField("channel", ChangesChannel).Info("notify bridge listening")

	for {
		// Periodic deadline so a quiet connection still notices cancellation.
		if err := conn.Conn().PgConn().Conn().SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}

		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			return fmt.Errorf("waiting for notification: %w", err)
		}

		b.handleNotification(n)
	}
}

func (b *NotifyBridge) handleNotification(n *pgconn.Notification) {
	var payload ChangePayload
	if err := json.Unmarshal([]byte(n.Payload), &payload); err != nil {
		b.log.WithError(err).WithField("channel", n.Channel).Warn("dropping malformed notification")
		return
	}

	eventType := payload.Type
	if eventType == "" {
		eventType = EventGraphChanged
	}

	b.log.WithFields(logrus.Fields{
		"event": eventType,
		"table": payload.Table,
		"op":    payload.Op,
	}).Debug("notification received")

	b.hub.BroadcastEvent(eventType, json.RawMessage(n.Payload))
}

// nextBackoff doubles the current backoff with ±25% jitter, capped at
// maxBackoff.
func nextBackoff(current time.Duration) time.Duration {
	next := current * backoffMultiplier
	if next > maxBackoff {
		next = maxBackoff
	}

	jitter := float64(next) * (0.75 + rand.Float64()*0.5) //nolint:gosec // jitter doesn't need crypto rand.

	return time.Duration(jitter)
}
