package client

import (
	"github.com/persistorai/papergraph/internal/domain"
	"github.com/persistorai/papergraph/internal/models"
	"github.com/persistorai/papergraph/internal/taxonomy"
)

// Wire types shared with the server.
type (
	Node           = models.Node
	Link           = models.Link
	GraphData      = models.GraphData
	NodeDetail     = models.NodeDetail
	Entry          = models.Entry
	EntryResult    = models.EntryResult
	ImportResult   = models.ImportResult
	MetadataRecord = models.MetadataRecord
	StoredMetadata = models.StoredMetadata
	TagTree        = domain.TagTree
	TreeNode       = taxonomy.TreeNode
	TreeRow        = taxonomy.Row
)

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Database      string            `json:"database"`
	Lookups       map[string]string `json:"lookups,omitempty"`
	Connections   int               `json:"ws_connections"`
	UptimeSeconds float64           `json:"uptime_seconds"`
}

// ReadinessResponse is returned by the readiness endpoint.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// TreeOptions overrides the server's tag hierarchy defaults. Empty fields
// keep the server default.
type TreeOptions struct {
	Order         string
	Duplicates    string
	EmptySegments string
	Collapsed     []string
}
