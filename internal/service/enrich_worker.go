package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/lookup"
	"github.com/persistorai/papergraph/internal/metrics"
	"github.com/persistorai/papergraph/internal/models"
)

// EnrichJob asks for the document nodeID to be resolved from ref.
type EnrichJob struct {
	NodeID string
	Ref    string
}

// MetadataWriter stores a resolved record.
type MetadataWriter interface {
	PutMetadata(ctx context.Context, nodeID string, rec *models.MetadataRecord) (*models.StoredMetadata, error)
}

// EnrichWorker resolves and stores metadata for new documents in the
// background with retry.
type EnrichWorker struct {
	resolver    Resolver
	store       MetadataWriter
	log         *logrus.Logger
	jobs        chan EnrichJob
	concurrency int
	baseDelay   time.Duration
}

// NewEnrichWorker creates a worker with the given queue capacity and concurrency.
func NewEnrichWorker(resolver Resolver, store MetadataWriter, log *logrus.Logger, queueSize, concurrency int) *EnrichWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}

	if concurrency <= 0 {
		concurrency = 2
	}

	return &EnrichWorker{
		resolver:    resolver,
		store:       store,
		log:         log,
		jobs:        make(chan EnrichJob, queueSize),
		concurrency: concurrency,
		baseDelay:   baseRetryDelay,
	}
}

// Enqueue adds a job without blocking. It reports false and drops the job
// when the queue is full.
func (w *EnrichWorker) Enqueue(job EnrichJob) bool {
	select {
	case w.jobs <- job:
		metrics.EnrichQueueDepth.Set(float64(len(w.jobs)))
		return true
	default:
		w.log.WithField("node_id", job.NodeID).Warn("enrich queue full, dropping job")
		return false
	}
}

// Run spawns the workers and blocks until ctx is cancelled and all of them
// have returned.
func (w *EnrichWorker) Run(ctx context.Context) {
	var wg sync.WaitGroup

	w.log.WithField("concurrency", w.concurrency).Info("starting enrich workers")

	for i := range w.concurrency {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()
			w.runWorker(ctx, id)
		}(i)
	}

	wg.Wait()
	w.log.Info("all enrich workers stopped")
}

func (w *EnrichWorker) runWorker(ctx context.Context, id int) {
	w.log.WithField("worker_id", id).Debug("enrich worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.jobs:
			metrics.EnrichQueueDepth.Set(float64(len(w.jobs)))
			w.processWithRetry(ctx, job)
		}
	}
}

const (
	maxRetries     = 3
	baseRetryDelay = 5 * time.Second
)

// processWithRetry retries only while the chain reports an upstream
// outage. A clean miss is final.
func (w *EnrichWorker) processWithRetry(ctx context.Context, job EnrichJob) {
	entry := w.log.WithField("node_id", job.NodeID)

	for attempt := range maxRetries {
		if ctx.Err() != nil {
			return
		}

		rec, err := w.resolver.Resolve(ctx, job.Ref)
		if err != nil {
			if !errors.Is(err, lookup.ErrServiceUnavailable) {
				entry.WithError(err).Debug("no metadata for document")
				return
			}

			entry.WithError(err).WithField("attempt", attempt+1).Warn("metadata resolution failed")

			if attempt < maxRetries-1 {
				delay := w.baseDelay * (1 << attempt)
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}

			continue
		}

		if _, err := w.store.PutMetadata(ctx, job.NodeID, rec); err != nil {
			entry.WithError(err).Error("storing metadata")
		} else {
			entry.WithField("source", rec.Source).Debug("metadata stored")
		}

		return
	}

	entry.Error("metadata resolution failed after all retries")
}
