package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/domain"
	"github.com/persistorai/papergraph/internal/entries"
	"github.com/persistorai/papergraph/internal/metadata"
	"github.com/persistorai/papergraph/internal/models"
)

// Compile-time check: *EntryService must satisfy domain.EntryService.
var _ domain.EntryService = (*EntryService)(nil)

// EntryStore writes entries.
type EntryStore interface {
	UpsertEntry(ctx context.Context, plan entries.Plan, addedOn string) (*models.EntryResult, error)
}

// EnrichEnqueuer schedules background metadata resolution.
type EnrichEnqueuer interface {
	Enqueue(job EnrichJob) bool
}

// maxEntriesPerRequest caps a single AddEntries call.
const maxEntriesPerRequest = 500

// ErrTooManyEntries is returned when a request exceeds maxEntriesPerRequest.
var ErrTooManyEntries = fmt.Errorf("at most %d entries per request", maxEntriesPerRequest)

// EntryService validates entries, writes them and queues enrichment for
// research links.
type EntryService struct {
	store  EntryStore
	enrich EnrichEnqueuer
	log    *logrus.Logger
	now    func() time.Time
}

// NewEntryService creates an EntryService. enrich may be nil.
func NewEntryService(store EntryStore, enrich EnrichEnqueuer, log *logrus.Logger) *EntryService {
	return &EntryService{store: store, enrich: enrich, log: log, now: time.Now}
}

// AddEntries validates every entry up front and fails on the first invalid
// one before writing anything. Entries are then written one transaction
// each.
func (s *EntryService) AddEntries(ctx context.Context, list []models.Entry) ([]models.EntryResult, error) {
	if len(list) > maxEntriesPerRequest {
		return nil, ErrTooManyEntries
	}

	for i := range list {
		if err := list[i].Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	results := make([]models.EntryResult, 0, len(list))

	for i := range list {
		res, err := s.add(ctx, list[i])
		if err != nil {
			return results, fmt.Errorf("entry %d: %w", i, err)
		}

		results = append(results, *res)
	}

	return results, nil
}

// Import writes what it can: invalid entries and id collisions are
// skipped and reported, while any other store error aborts.
func (s *EntryService) Import(ctx context.Context, list []models.Entry) (*models.ImportResult, error) {
	out := &models.ImportResult{}

	for i := range list {
		e := list[i]

		if err := e.Validate(); err != nil {
			out.Skipped++
			out.Errors = append(out.Errors, fmt.Sprintf("row %d: %v", i+1, err))

			continue
		}

		if _, err := s.add(ctx, e); err != nil {
			if errors.Is(err, models.ErrDuplicateKey) {
				out.Skipped++
				out.Errors = append(out.Errors, fmt.Sprintf("row %d: %v", i+1, err))

				continue
			}

			return out, fmt.Errorf("importing row %d: %w", i+1, err)
		}

		out.Imported++
	}

	s.log.WithFields(logrus.Fields{"imported": out.Imported, "skipped": out.Skipped}).Info("entries imported")

	return out, nil
}

func (s *EntryService) add(ctx context.Context, e models.Entry) (*models.EntryResult, error) {
	date := e.Date
	if date == "" {
		date = s.now().Format(entries.DateLayout)
	}

	res, err := s.store.UpsertEntry(ctx, entries.PlanEntry(e), date)
	if err != nil {
		return nil, err
	}

	if s.enrich != nil && metadata.ShouldResolve(res.Document.Link) {
		s.enrich.Enqueue(EnrichJob{NodeID: res.Document.ID, Ref: res.Document.Link})
	}

	return res, nil
}
