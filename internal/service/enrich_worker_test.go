package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/persistorai/papergraph/internal/lookup"
	"github.com/persistorai/papergraph/internal/models"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("condition not met before deadline")
}

func TestEnrichWorker_StoresResolvedRecord(t *testing.T) {
	store := newMockMetadataStore()
	w := NewEnrichWorker(okResolver(), store, testLogger(), 10, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Run(ctx)

	w.Enqueue(EnrichJob{NodeID: "d1", Ref: arxivLink})

	waitFor(t, func() bool { return store.get("d1") != nil })
}

func TestEnrichWorker_RetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{
			name:      "outage is retried",
			err:       fmt.Errorf("%w (last lookup error: %w)", models.ErrNoUsableMetadata, lookup.ErrServiceUnavailable),
			wantCalls: maxRetries,
		},
		{
			name:      "clean miss is final",
			err:       models.ErrNoUsableMetadata,
			wantCalls: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := &mockResolver{resolve: func(int, string) (*models.MetadataRecord, error) {
				return nil, tc.err
			}}
			store := newMockMetadataStore()

			w := NewEnrichWorker(res, store, testLogger(), 10, 1)
			w.baseDelay = time.Millisecond

			w.processWithRetry(context.Background(), EnrichJob{NodeID: "d1", Ref: arxivLink})

			if res.count() != tc.wantCalls {
				t.Errorf("resolve calls = %d, want %d", res.count(), tc.wantCalls)
			}

			if store.get("d1") != nil {
				t.Error("failed resolution was stored")
			}
		})
	}
}

func TestEnrichWorker_RecoversAfterOutage(t *testing.T) {
	res := &mockResolver{resolve: func(n int, _ string) (*models.MetadataRecord, error) {
		if n == 1 {
			return nil, lookup.ErrServiceUnavailable
		}

		return &models.MetadataRecord{Title: "ok", Abstract: "x"}, nil
	}}
	store := newMockMetadataStore()

	w := NewEnrichWorker(res, store, testLogger(), 10, 1)
	w.baseDelay = time.Millisecond

	w.processWithRetry(context.Background(), EnrichJob{NodeID: "d1", Ref: arxivLink})

	if store.get("d1") == nil {
		t.Fatal("record not stored after recovery")
	}
}

func TestEnrichWorker_DropsWhenFull(t *testing.T) {
	w := NewEnrichWorker(okResolver(), newMockMetadataStore(), testLogger(), 1, 1)

	if !w.Enqueue(EnrichJob{NodeID: "a"}) {
		t.Fatal("first enqueue rejected")
	}

	if w.Enqueue(EnrichJob{NodeID: "b"}) {
		t.Error("enqueue into full queue accepted")
	}
}

func TestEnrichWorker_StopsOnCancel(t *testing.T) {
	w := NewEnrichWorker(okResolver(), newMockMetadataStore(), testLogger(), 10, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
