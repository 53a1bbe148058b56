// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/domain"
	"github.com/persistorai/papergraph/internal/metadata"
	"github.com/persistorai/papergraph/internal/metrics"
	"github.com/persistorai/papergraph/internal/models"
	"github.com/persistorai/papergraph/internal/taxonomy"
)

// Compile-time check: *GraphService must satisfy domain.GraphService.
var _ domain.GraphService = (*GraphService)(nil)

// GraphStore is the data access GraphService needs.
type GraphStore interface {
	Snapshot(ctx context.Context) (*models.GraphData, error)
}

// NodeReader reads single nodes.
type NodeReader interface {
	GetNode(ctx context.Context, id string) (*models.Node, error)
}

// Node sizing for the graph view.
const (
	minNodeVal      = 3
	valPerNeighbour = 2
)

// GraphService serves snapshots and tag hierarchies.
type GraphService struct {
	graph    GraphStore
	nodes    NodeReader
	defaults taxonomy.Options
	log      *logrus.Logger
}

// NewGraphService creates a GraphService. defaults fill any option a
// TagTree caller leaves empty.
func NewGraphService(graph GraphStore, nodes NodeReader, defaults taxonomy.Options, log *logrus.Logger) *GraphService {
	return &GraphService{graph: graph, nodes: nodes, defaults: defaults, log: log}
}

// Graph returns the full snapshot with each node's display size set to
// max(3, 2 × degree).
func (s *GraphService) Graph(ctx context.Context) (*models.GraphData, error) {
	data, err := s.graph.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading graph: %w", err)
	}

	degree := make(map[string]int, len(data.Nodes))
	for _, l := range data.Links {
		degree[l.Source]++
		degree[l.Target]++
	}

	counts := map[models.NodeType]int{}

	for i := range data.Nodes {
		n := &data.Nodes[i]
		n.Val = max(minNodeVal, valPerNeighbour*degree[n.ID])
		counts[n.Type]++
	}

	for _, t := range []models.NodeType{models.NodeTypeDocument, models.NodeTypeTag} {
		metrics.NodeCount.WithLabelValues(string(t)).Set(float64(counts[t]))
	}

	return data, nil
}

// TagTree builds the tag hierarchy from the current snapshot.
func (s *GraphService) TagTree(ctx context.Context, opts taxonomy.Options, collapsed taxonomy.CollapseState) (*domain.TagTree, error) {
	data, err := s.graph.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading graph: %w", err)
	}

	forest, err := taxonomy.Build(models.TagRecordsFrom(data.Nodes), mergeOptions(s.defaults, opts))
	if err != nil {
		return nil, err
	}

	metrics.TreeBuilds.Inc()
	metrics.TreeDuplicates.Add(float64(len(forest.Duplicates)))

	for _, d := range forest.Dropped {
		metrics.TreeDropped.WithLabelValues(d.Reason).Inc()
	}

	if len(forest.Dropped) > 0 || len(forest.Duplicates) > 0 {
		s.log.WithFields(logrus.Fields{
			"dropped":    len(forest.Dropped),
			"duplicates": len(forest.Duplicates),
		}).Debug("tag tree built with anomalies")
	}

	return &domain.TagTree{Forest: forest, Visible: taxonomy.Visible(forest, collapsed)}, nil
}

// NodeDetail returns a node with the document type inferred from its link.
func (s *GraphService) NodeDetail(ctx context.Context, nodeID string) (*models.NodeDetail, error) {
	n, err := s.nodes.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	return &models.NodeDetail{Node: *n, DocType: metadata.InferDocType(n.Link)}, nil
}

// mergeOptions overlays the non-empty fields of override onto base.
func mergeOptions(base, override taxonomy.Options) taxonomy.Options {
	if override.Order != "" {
		base.Order = override.Order
	}

	if override.Duplicates != "" {
		base.Duplicates = override.Duplicates
	}

	if override.EmptySegments != "" {
		base.EmptySegments = override.EmptySegments
	}

	return base
}
