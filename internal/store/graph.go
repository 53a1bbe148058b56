package store

import (
	"context"
	"fmt"

	"github.com/persistorai/papergraph/internal/models"
)

// GraphStore reads whole-graph snapshots.
type GraphStore struct {
	Base
}

// NewGraphStore creates a new GraphStore.
func NewGraphStore(base Base) *GraphStore {
	return &GraphStore{Base: base}
}

// Snapshot returns every node and link as of one consistent read. Nodes are
// ordered by creation so insertion-ordered tag trees are reproducible.
func (s *GraphStore) Snapshot(ctx context.Context) (*models.GraphData, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only.

	rows, err := tx.Query(ctx, `SELECT `+nodeColumns+` FROM graph_nodes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}

	nodes, err := collectNodes(rows)
	rows.Close()

	if err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `SELECT source, target, type FROM graph_links ORDER BY created_at, source, target`)
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}

	links, err := collectLinks(rows)
	rows.Close()

	if err != nil {
		return nil, err
	}

	return &models.GraphData{Nodes: nodes, Links: links}, nil
}
