// Package metadata resolves document references to bibliographic records
// by walking an ordered chain of lookup services.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/metrics"
	"github.com/persistorai/papergraph/internal/models"
)

// LookupFunc queries one external service. A nil result with a nil error
// means the service had nothing for key.
type LookupFunc func(ctx context.Context, key string) (*models.LookupResult, error)

// Lookups holds the pluggable services the resolver may call. A nil func
// behaves as a service that always returns nothing.
type Lookups struct {
	ByDOI     LookupFunc
	ByTitle   LookupFunc
	ArxivByID LookupFunc
}

// step is a state of the resolution machine.
type step int

const (
	stepStart step = iota
	stepArxiv
	stepByDOI
	stepByTitle
	stepDone
	stepNotFound
)

func (s step) String() string {
	switch s {
	case stepStart:
		return "start"
	case stepArxiv:
		return "lookup_arxiv"
	case stepByDOI:
		return "lookup_by_doi"
	case stepByTitle:
		return "lookup_by_title"
	case stepDone:
		return "done"
	default:
		return "not_found"
	}
}

// defaultSource tags results from lookups that leave Source empty.
var defaultSource = map[step]models.Source{
	stepArxiv:   models.SourceArxivByID,
	stepByDOI:   models.SourceSemanticScholarByDOI,
	stepByTitle: models.SourceSemanticScholarByTitle,
}

// Resolver turns a reference into a MetadataRecord. It holds no per-call
// state and is safe for concurrent use.
type Resolver struct {
	lookups Lookups
	log     *logrus.Logger
}

// NewResolver creates a resolver over the given lookups.
func NewResolver(lookups Lookups, log *logrus.Logger) *Resolver {
	return &Resolver{lookups: lookups, log: log}
}

// resolution carries the inputs of one Resolve call between steps.
type resolution struct {
	ref     string
	doi     string
	arxivID string
}

// Resolve walks the lookup chain for ref and returns the first record with
// a usable abstract. It returns models.ErrNoUsableMetadata when every
// applicable step came back empty, failed or unusable.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*models.MetadataRecord, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, models.ErrMissingReference
	}

	res := resolution{ref: ref}
	state := stepStart

	var (
		result  *models.LookupResult
		lastErr error
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch state {
		case stepStart:
			state = r.start(&res)

		case stepArxiv:
			result, lastErr = r.attempt(ctx, state, r.lookups.ArxivByID, res.arxivID, lastErr)
			state = next(result, stepNotFound)

		case stepByDOI:
			result, lastErr = r.attempt(ctx, state, r.lookups.ByDOI, res.doi, lastErr)
			state = next(result, stepByTitle)

		case stepByTitle:
			result, lastErr = r.attempt(ctx, state, r.lookups.ByTitle, res.ref, lastErr)
			state = next(result, stepNotFound)

		case stepDone:
			rec := models.NewMetadataRecord(result)
			metrics.Resolutions.WithLabelValues("found", string(rec.Source)).Inc()

			return rec, nil

		case stepNotFound:
			// A cancelled context surfaces as cancellation, not as "nothing found".
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			metrics.Resolutions.WithLabelValues("not_found", "").Inc()

			if lastErr != nil {
				return nil, fmt.Errorf("resolving %q: %w (last lookup error: %w)", ref, models.ErrNoUsableMetadata, lastErr)
			}

			return nil, fmt.Errorf("resolving %q: %w", ref, models.ErrNoUsableMetadata)
		}
	}
}

func (r *Resolver) start(res *resolution) step {
	if id, ok := ExtractArxivID(res.ref); ok {
		res.arxivID = id
		return stepArxiv
	}

	if doi, ok := ExtractDOI(res.ref); ok {
		res.doi = doi
		return stepByDOI
	}

	return stepByTitle
}

// next moves to stepDone on a usable result and to fallback otherwise.
func next(result *models.LookupResult, fallback step) step {
	if result.HasUsableAbstract() {
		return stepDone
	}

	return fallback
}

// attempt runs one lookup. Errors and unusable results are logged and
// reported as a nil result so the caller falls through. The most recent
// lookup error is carried forward and wrapped into the not-found error.
func (r *Resolver) attempt(ctx context.Context, s step, fn LookupFunc, key string, lastErr error) (*models.LookupResult, error) {
	if fn == nil {
		return nil, lastErr
	}

	entry := r.log.WithFields(logrus.Fields{"step": s.String(), "key": key})

	result, err := fn(ctx, key)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			entry.WithError(err).Warn("metadata lookup failed")
		}

		return nil, err
	}

	if !result.HasUsableAbstract() {
		entry.Debug("metadata lookup returned no usable abstract")
		return nil, lastErr
	}

	out := *result
	if out.Source == "" {
		out.Source = defaultSource[s]
	}

	return &out, nil
}
