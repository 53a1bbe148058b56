// Package domain defines the canonical service interfaces shared by the
// HTTP API, the WebSocket hub and the client. Consumers should depend on
// these interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/persistorai/papergraph/internal/models"
	"github.com/persistorai/papergraph/internal/taxonomy"
)

// TagTree is a built tag hierarchy plus the rows visible under a collapse
// state.
type TagTree struct {
	*taxonomy.Forest
	Visible []taxonomy.Row `json:"visible"`
}

// GraphService reads the graph.
type GraphService interface {
	Graph(ctx context.Context) (*models.GraphData, error)
	TagTree(ctx context.Context, opts taxonomy.Options, collapsed taxonomy.CollapseState) (*TagTree, error)
	NodeDetail(ctx context.Context, nodeID string) (*models.NodeDetail, error)
}

// EntryService ingests submitted documents.
type EntryService interface {
	AddEntries(ctx context.Context, list []models.Entry) ([]models.EntryResult, error)
	Import(ctx context.Context, list []models.Entry) (*models.ImportResult, error)
}

// MetadataService resolves and stores bibliographic records.
type MetadataService interface {
	Resolve(ctx context.Context, ref string) (*models.MetadataRecord, error)
	NodeMetadata(ctx context.Context, nodeID string) (*models.StoredMetadata, error)
	Backfill(ctx context.Context, limit int) (int, error)
}
