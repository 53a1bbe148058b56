package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/entries"
	"github.com/persistorai/papergraph/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

type mockGraphStore struct {
	snapshot func(ctx context.Context) (*models.GraphData, error)
}

func (m *mockGraphStore) Snapshot(ctx context.Context) (*models.GraphData, error) {
	return m.snapshot(ctx)
}

type mockNodeReader struct {
	getNode func(ctx context.Context, id string) (*models.Node, error)
}

func (m *mockNodeReader) GetNode(ctx context.Context, id string) (*models.Node, error) {
	return m.getNode(ctx, id)
}

// mockEntryStore records every plan it receives.
type mockEntryStore struct {
	mu    sync.Mutex
	plans []entries.Plan
	dates []string

	upsert func(plan entries.Plan) (*models.EntryResult, error)
}

func (m *mockEntryStore) UpsertEntry(_ context.Context, plan entries.Plan, addedOn string) (*models.EntryResult, error) {
	m.mu.Lock()
	m.plans = append(m.plans, plan)
	m.dates = append(m.dates, addedOn)
	m.mu.Unlock()

	if m.upsert != nil {
		return m.upsert(plan)
	}

	return &models.EntryResult{Document: plan.Document, Tags: plan.Tags, Links: plan.Links}, nil
}

type mockEnqueuer struct {
	mu   sync.Mutex
	jobs []EnrichJob
	full bool
}

func (m *mockEnqueuer) Enqueue(job EnrichJob) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.full {
		return false
	}

	m.jobs = append(m.jobs, job)

	return true
}

func (m *mockEnqueuer) getJobs() []EnrichJob {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]EnrichJob(nil), m.jobs...)
}

// mockResolver counts calls and returns configured responses.
type mockResolver struct {
	mu    sync.Mutex
	refs  []string
	calls int

	resolve func(calls int, ref string) (*models.MetadataRecord, error)

	// When hold is set, Resolve signals started and parks until hold is
	// closed or its context ends.
	hold    chan struct{}
	started chan struct{}
}

func (m *mockResolver) Resolve(ctx context.Context, ref string) (*models.MetadataRecord, error) {
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.refs = append(m.refs, ref)
	m.mu.Unlock()

	if m.hold != nil {
		if n == 1 && m.started != nil {
			close(m.started)
		}

		select {
		case <-m.hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return m.resolve(n, ref)
}

func (m *mockResolver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

// mockMetadataStore is an in-memory paper_metadata table.
type mockMetadataStore struct {
	mu      sync.Mutex
	records map[string]*models.MetadataRecord
	putErr  error
	getErr  error
}

func newMockMetadataStore() *mockMetadataStore {
	return &mockMetadataStore{records: map[string]*models.MetadataRecord{}}
}

func (m *mockMetadataStore) GetMetadata(_ context.Context, nodeID string) (*models.StoredMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	rec, ok := m.records[nodeID]
	if !ok {
		return nil, models.ErrMetadataNotFound
	}

	return &models.StoredMetadata{NodeID: nodeID, Record: *rec}, nil
}

func (m *mockMetadataStore) PutMetadata(_ context.Context, nodeID string, rec *models.MetadataRecord) (*models.StoredMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putErr != nil {
		return nil, m.putErr
	}

	m.records[nodeID] = rec

	return &models.StoredMetadata{NodeID: nodeID, Record: *rec}, nil
}

func (m *mockMetadataStore) get(nodeID string) *models.MetadataRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.records[nodeID]
}

type mockPendingLister struct {
	docs []models.Node
	err  error
}

func (m *mockPendingLister) ListDocumentsWithoutMetadata(_ context.Context, limit int) ([]models.Node, error) {
	if m.err != nil {
		return nil, m.err
	}

	if limit < len(m.docs) {
		return m.docs[:limit], nil
	}

	return m.docs, nil
}
