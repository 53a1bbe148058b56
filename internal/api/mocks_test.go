package api_test

import (
	"context"

	"github.com/persistorai/papergraph/internal/domain"
	"github.com/persistorai/papergraph/internal/models"
	"github.com/persistorai/papergraph/internal/taxonomy"
)

type mockGraphService struct {
	graphFn  func(ctx context.Context) (*models.GraphData, error)
	treeFn   func(ctx context.Context, opts taxonomy.Options, collapsed taxonomy.CollapseState) (*domain.TagTree, error)
	detailFn func(ctx context.Context, nodeID string) (*models.NodeDetail, error)
}

func (m *mockGraphService) Graph(ctx context.Context) (*models.GraphData, error) {
	return m.graphFn(ctx)
}

func (m *mockGraphService) TagTree(ctx context.Context, opts taxonomy.Options, collapsed taxonomy.CollapseState) (*domain.TagTree, error) {
	return m.treeFn(ctx, opts, collapsed)
}

func (m *mockGraphService) NodeDetail(ctx context.Context, nodeID string) (*models.NodeDetail, error) {
	return m.detailFn(ctx, nodeID)
}

type mockEntryService struct {
	addFn    func(ctx context.Context, list []models.Entry) ([]models.EntryResult, error)
	importFn func(ctx context.Context, list []models.Entry) (*models.ImportResult, error)
}

func (m *mockEntryService) AddEntries(ctx context.Context, list []models.Entry) ([]models.EntryResult, error) {
	return m.addFn(ctx, list)
}

func (m *mockEntryService) Import(ctx context.Context, list []models.Entry) (*models.ImportResult, error) {
	return m.importFn(ctx, list)
}

type mockMetadataService struct {
	resolveFn  func(ctx context.Context, ref string) (*models.MetadataRecord, error)
	nodeFn     func(ctx context.Context, nodeID string) (*models.StoredMetadata, error)
	backfillFn func(ctx context.Context, limit int) (int, error)
}

func (m *mockMetadataService) Resolve(ctx context.Context, ref string) (*models.MetadataRecord, error) {
	return m.resolveFn(ctx, ref)
}

func (m *mockMetadataService) NodeMetadata(ctx context.Context, nodeID string) (*models.StoredMetadata, error) {
	return m.nodeFn(ctx, nodeID)
}

func (m *mockMetadataService) Backfill(ctx context.Context, limit int) (int, error) {
	return m.backfillFn(ctx, limit)
}

type mockDB struct{ err error }

func (m *mockDB) HealthCheck(context.Context) error { return m.err }

type mockBreakers map[string]string

func (m mockBreakers) BreakerStates() map[string]string { return m }
