package store

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/papergraph/internal/models"
)

// nodeColumns lists the columns selected for node queries.
const nodeColumns = `id, type, title, link, owner, added_on, created_at`

// metadataColumns lists the columns selected for paper_metadata queries.
const metadataColumns = `node_id, title, authors, abstract, publisher, date, doi, source, resolved_at`

// scanNode scans a single row into a models.Node.
func scanNode(scan func(dest ...any) error) (*models.Node, error) {
	var (
		n       models.Node
		rawType string
	)

	if err := scan(&n.ID, &rawType, &n.Title, &n.Link, &n.Owner, &n.AddedOn, &n.CreatedAt); err != nil {
		return nil, err
	}

	t, ok := models.ParseNodeType(rawType)
	if !ok {
		return nil, fmt.Errorf("node %s has unknown type %q", n.ID, rawType)
	}

	n.Type = t

	return &n, nil
}

// collectNodes scans all rows into a node slice.
func collectNodes(rows pgx.Rows) ([]models.Node, error) {
	nodes := make([]models.Node, 0, 64)

	for rows.Next() {
		n, err := scanNode(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning node row: %w", err)
		}

		nodes = append(nodes, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating node rows: %w", err)
	}

	return nodes, nil
}

// collectLinks scans (source, target, type) rows.
func collectLinks(rows pgx.Rows) ([]models.Link, error) {
	links := make([]models.Link, 0, 64)

	for rows.Next() {
		var (
			l       models.Link
			rawType string
		)

		if err := rows.Scan(&l.Source, &l.Target, &rawType); err != nil {
			return nil, fmt.Errorf("scanning link row: %w", err)
		}

		l.Type, _ = models.ParseNodeType(rawType)
		links = append(links, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating link rows: %w", err)
	}

	return links, nil
}

// scanMetadata scans a single paper_metadata row.
func scanMetadata(scan func(dest ...any) error) (*models.StoredMetadata, error) {
	var (
		m   models.StoredMetadata
		src string
	)

	err := scan(
		&m.NodeID,
		&m.Record.Title,
		&m.Record.Authors,
		&m.Record.Abstract,
		&m.Record.Publisher,
		&m.Record.Date,
		&m.Record.DOI,
		&src,
		&m.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Record.Source = models.Source(src)

	return &m, nil
}
