// Package store provides focused data access stores for the paper graph.
//
// Each store owns one concern (nodes, graph snapshots, metadata) and embeds
// shared helpers via Base. Stores never import each other.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/db"
	"github.com/persistorai/papergraph/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for all stores.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return tx, nil
}

// beginReadTx starts a read-only, repeatable-read transaction so multi
// statement reads see one snapshot.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	return tx, nil
}

// notify publishes a change on the graph_changes channel (best-effort,
// post-commit).
func (b *Base) notify(p db.ChangePayload) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, _ := json.Marshal(p) //nolint:errcheck // plain struct, cannot fail.
	if _, err := b.Pool.Exec(ctx, "SELECT pg_notify($1, $2)", db.ChangesChannel, string(payload)); err != nil {
		b.Log.WithError(err).WithFields(logrus.Fields{"table": p.Table, "op": p.Op}).Warn("failed to send change notification")
	}
}
