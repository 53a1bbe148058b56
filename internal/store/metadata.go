package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/papergraph/internal/db"
	"github.com/persistorai/papergraph/internal/models"
)

// EventMetadataResolved is published when a record is stored for a node.
const EventMetadataResolved = "metadata.resolved"

// MetadataStore persists resolved bibliographic records.
type MetadataStore struct {
	Base
}

// NewMetadataStore creates a new MetadataStore.
func NewMetadataStore(base Base) *MetadataStore {
	return &MetadataStore{Base: base}
}

// GetMetadata returns the stored record for nodeID, or
// models.ErrMetadataNotFound.
func (s *MetadataStore) GetMetadata(ctx context.Context, nodeID string) (*models.StoredMetadata, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `SELECT `+metadataColumns+` FROM paper_metadata WHERE node_id = $1`, nodeID)

	m, err := scanMetadata(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrMetadataNotFound
		}

		return nil, fmt.Errorf("getting metadata: %w", err)
	}

	return m, nil
}

// PutMetadata stores rec for nodeID, replacing any previous record.
func (s *MetadataStore) PutMetadata(ctx context.Context, nodeID string, rec *models.MetadataRecord) (*models.StoredMetadata, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `INSERT INTO paper_metadata
			(node_id, title, authors, abstract, publisher, date, doi, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (node_id) DO UPDATE SET
			title = EXCLUDED.title,
			authors = EXCLUDED.authors,
			abstract = EXCLUDED.abstract,
			publisher = EXCLUDED.publisher,
			date = EXCLUDED.date,
			doi = EXCLUDED.doi,
			source = EXCLUDED.source,
			resolved_at = now()
		RETURNING `+metadataColumns,
		nodeID, rec.Title, rec.Authors, rec.Abstract, rec.Publisher, rec.Date, rec.DOI, string(rec.Source))

	m, err := scanMetadata(row.Scan)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, models.ErrNodeNotFound
		}

		return nil, fmt.Errorf("storing metadata: %w", err)
	}

	s.notify(db.ChangePayload{Type: EventMetadataResolved, Table: "paper_metadata", Op: "upsert", NodeID: nodeID})

	return m, nil
}
