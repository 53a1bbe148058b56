package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/persistorai/papergraph/internal/domain"
	"github.com/persistorai/papergraph/internal/metadata"
	"github.com/persistorai/papergraph/internal/models"
)

// Compile-time check: *MetadataService must satisfy domain.MetadataService.
var _ domain.MetadataService = (*MetadataService)(nil)

// Resolver resolves a reference to a record.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (*models.MetadataRecord, error)
}

// MetadataStore persists resolved records.
type MetadataStore interface {
	GetMetadata(ctx context.Context, nodeID string) (*models.StoredMetadata, error)
	PutMetadata(ctx context.Context, nodeID string, rec *models.MetadataRecord) (*models.StoredMetadata, error)
}

// PendingLister lists documents that still need metadata.
type PendingLister interface {
	ListDocumentsWithoutMetadata(ctx context.Context, limit int) ([]models.Node, error)
}

// sharedResolveTimeout bounds a resolution that outlives the caller that
// started it.
const sharedResolveTimeout = 45 * time.Second

// ErrNotResearchLink is returned for nodes whose link is not a research
// artifact, so resolution is not attempted.
var ErrNotResearchLink = errors.New("node link is not a research artifact")

// MetadataService fronts the resolver with the paper_metadata cache.
type MetadataService struct {
	resolver Resolver
	store    MetadataStore
	nodes    NodeReader
	pending  PendingLister
	enrich   EnrichEnqueuer
	log      *logrus.Logger

	// inflight collapses concurrent first requests for the same node into
	// one resolution. The resolution runs detached from any one caller.
	inflight       singleflight.Group
	resolveTimeout time.Duration
}

// NewMetadataService creates a MetadataService. enrich may be nil, in which
// case Backfill enqueues nothing.
func NewMetadataService(
	resolver Resolver, store MetadataStore, nodes NodeReader, pending PendingLister, enrich EnrichEnqueuer, log *logrus.Logger,
) *MetadataService {
	return &MetadataService{
		resolver:       resolver,
		store:          store,
		nodes:          nodes,
		pending:        pending,
		enrich:         enrich,
		log:            log,
		resolveTimeout: sharedResolveTimeout,
	}
}

// Resolve runs a live resolution without storing anything.
func (s *MetadataService) Resolve(ctx context.Context, ref string) (*models.MetadataRecord, error) {
	return s.resolver.Resolve(ctx, ref)
}

// NodeMetadata returns the stored record for a document, resolving and
// storing it on first request. A caller that gives up gets ctx.Err() while
// the shared resolution carries on for the callers still waiting.
func (s *MetadataService) NodeMetadata(ctx context.Context, nodeID string) (*models.StoredMetadata, error) {
	stored, err := s.store.GetMetadata(ctx, nodeID)
	if err == nil {
		return stored, nil
	}

	if !errors.Is(err, models.ErrMetadataNotFound) {
		return nil, err
	}

	ch := s.inflight.DoChan(nodeID, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.resolveTimeout)
		defer cancel()

		return s.resolveNode(rctx, nodeID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}

		if r.Shared {
			s.log.WithField("node_id", nodeID).Debug("joined in-flight metadata resolution")
		}

		return r.Val.(*models.StoredMetadata), nil
	}
}

func (s *MetadataService) resolveNode(ctx context.Context, nodeID string) (*models.StoredMetadata, error) {
	// A concurrent caller may have stored it between our miss and this call.
	if stored, err := s.store.GetMetadata(ctx, nodeID); err == nil {
		return stored, nil
	}

	n, err := s.nodes.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	if n.IsTag() || !metadata.ShouldResolve(n.Link) {
		return nil, fmt.Errorf("node %s: %w", nodeID, ErrNotResearchLink)
	}

	rec, err := s.resolver.Resolve(ctx, n.Link)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.PutMetadata(ctx, nodeID, rec)
	if err != nil {
		return nil, fmt.Errorf("storing metadata for %s: %w", nodeID, err)
	}

	s.log.WithFields(logrus.Fields{"node_id": nodeID, "source": rec.Source}).Debug("metadata resolved on demand")

	return stored, nil
}

// Backfill queues enrichment for up to limit documents that have no stored
// metadata and returns how many were queued.
func (s *MetadataService) Backfill(ctx context.Context, limit int) (int, error) {
	if s.enrich == nil {
		return 0, nil
	}

	docs, err := s.pending.ListDocumentsWithoutMetadata(ctx, limit)
	if err != nil {
		return 0, err
	}

	queued := 0

	for i := range docs {
		if !metadata.ShouldResolve(docs[i].Link) {
			continue
		}

		if s.enrich.Enqueue(EnrichJob{NodeID: docs[i].ID, Ref: docs[i].Link}) {
			queued++
		}
	}

	return queued, nil
}
