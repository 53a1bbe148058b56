package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/papergraph/internal/db"
	"github.com/persistorai/papergraph/internal/entries"
	"github.com/persistorai/papergraph/internal/models"
)

// NodeStore handles node reads and entry upserts.
type NodeStore struct {
	Base
}

// NewNodeStore creates a new NodeStore.
func NewNodeStore(base Base) *NodeStore {
	return &NodeStore{Base: base}
}

// GetNode retrieves a node by id.
func (s *NodeStore) GetNode(ctx context.Context, id string) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `SELECT `+nodeColumns+` FROM graph_nodes WHERE id = $1`, id)

	n, err := scanNode(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNodeNotFound
		}

		return nil, fmt.Errorf("getting node: %w", err)
	}

	return n, nil
}

// Re-adding an existing document keeps its title and owner but takes a
// newly supplied link or date. The WHERE clause turns an id collision with
// a node of the other type into zero returned rows.
const (
	upsertDocumentSQL = `INSERT INTO graph_nodes (id, type, title, link, owner, added_on)
		VALUES ($1, 'DOCUMENT', $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			link = COALESCE(NULLIF(EXCLUDED.link, ''), graph_nodes.link),
			added_on = COALESCE(NULLIF(EXCLUDED.added_on, ''), graph_nodes.added_on)
		WHERE graph_nodes.type = 'DOCUMENT'
		RETURNING ` + nodeColumns

	upsertTagSQL = `INSERT INTO graph_nodes (id, type, title, owner)
		VALUES ($1, 'TAG', $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = graph_nodes.title
		WHERE graph_nodes.type = 'TAG'
		RETURNING ` + nodeColumns

	insertLinkSQL = `INSERT INTO graph_links (source, target, type)
		VALUES ($1, $2, $3)
		ON CONFLICT (source, target) DO NOTHING`
)

// UpsertEntry writes the document, its tag prefix chain and their links in
// one transaction. It returns models.ErrDuplicateKey when a title hashes to
// the id of an existing node of the other type.
func (s *NodeStore) UpsertEntry(ctx context.Context, plan entries.Plan, addedOn string) (*models.EntryResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("upserting entry: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	result := &models.EntryResult{Tags: make([]models.Node, 0, len(plan.Tags)), Links: plan.Links}

	// Tags first so the document link target exists.
	for _, tag := range plan.Tags {
		n, err := scanNode(tx.QueryRow(ctx, upsertTagSQL, tag.ID, tag.Title, tag.Owner).Scan)
		if err != nil {
			return nil, upsertErr("tag", tag.Title, err)
		}

		result.Tags = append(result.Tags, *n)
	}

	d := plan.Document

	doc, err := scanNode(tx.QueryRow(ctx, upsertDocumentSQL, d.ID, d.Title, d.Link, d.Owner, addedOn).Scan)
	if err != nil {
		return nil, upsertErr("document", d.Title, err)
	}

	result.Document = *doc

	for _, l := range plan.Links {
		if _, err := tx.Exec(ctx, insertLinkSQL, l.Source, l.Target, string(l.Type)); err != nil {
			return nil, fmt.Errorf("inserting link %s -> %s: %w", l.Source, l.Target, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing entry: %w", err)
	}

	s.notify(db.ChangePayload{Type: db.EventGraphChanged, Table: "graph_nodes", Op: "upsert", NodeID: doc.ID})

	return result, nil
}

func upsertErr(kind, title string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %q collides with an existing node of another type: %w", kind, title, models.ErrDuplicateKey)
	}

	return fmt.Errorf("upserting %s %q: %w", kind, title, err)
}

// ListDocumentsWithoutMetadata returns documents with a link and no stored
// metadata, oldest first.
func (s *NodeStore) ListDocumentsWithoutMetadata(ctx context.Context, limit int) ([]models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.Pool.Query(ctx, `SELECT `+prefixed("n", nodeColumns)+`
		FROM graph_nodes n
		LEFT JOIN paper_metadata m ON m.node_id = n.id
		WHERE n.type = 'DOCUMENT' AND n.link <> '' AND m.node_id IS NULL
		ORDER BY n.created_at, n.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing documents without metadata: %w", err)
	}
	defer rows.Close()

	return collectNodes(rows)
}
