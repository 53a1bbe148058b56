package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/metadata"
	"github.com/persistorai/papergraph/internal/models"
)

// Names accepted in Config.DOIOrder.
const (
	NameSemanticScholar = "semanticscholar"
	NameCrossref        = "crossref"
)

// Config holds upstream endpoints and credentials.
type Config struct {
	SemanticScholarURL    string
	SemanticScholarAPIKey string
	CrossrefURL           string
	CrossrefMailto        string
	ArxivURL              string
	Timeout               time.Duration
	// DOIOrder lists the DOI services to try, first to last.
	DOIOrder []string
}

// Set is the full collection of configured lookup clients.
type Set struct {
	SemanticScholar *SemanticScholar
	Crossref        *Crossref
	Arxiv           *Arxiv

	doi metadata.LookupFunc
	log *logrus.Logger
}

// New builds every client from cfg and wires the DOI chain.
func New(cfg Config, log *logrus.Logger) (*Set, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &http.Client{Timeout: timeout}

	s := &Set{
		SemanticScholar: NewSemanticScholar(cfg.SemanticScholarURL, cfg.SemanticScholarAPIKey, client, log),
		Crossref:        NewCrossref(cfg.CrossrefURL, cfg.CrossrefMailto, client, log),
		Arxiv:           NewArxiv(cfg.ArxivURL, client, log),
		log:             log,
	}

	order := cfg.DOIOrder
	if len(order) == 0 {
		order = []string{NameSemanticScholar, NameCrossref}
	}

	fns := make([]metadata.LookupFunc, 0, len(order))

	for _, name := range order {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case NameSemanticScholar:
			fns = append(fns, s.SemanticScholar.ByDOI)
		case NameCrossref:
			fns = append(fns, s.Crossref.ByDOI)
		default:
			return nil, fmt.Errorf("unknown DOI lookup %q", name)
		}
	}

	s.doi = Chain(log, fns...)

	return s, nil
}

// Lookups returns the functions the resolver walks.
func (s *Set) Lookups() metadata.Lookups {
	return metadata.Lookups{
		ByDOI:     s.doi,
		ByTitle:   s.SemanticScholar.ByTitle,
		ArxivByID: s.Arxiv.ByID,
	}
}

// BreakerStates reports each upstream's circuit breaker state by name.
func (s *Set) BreakerStates() map[string]string {
	return map[string]string{
		s.SemanticScholar.svc.name: s.SemanticScholar.svc.State().String(),
		s.Crossref.svc.name:        s.Crossref.svc.State().String(),
		s.Arxiv.svc.name:           s.Arxiv.svc.State().String(),
	}
}

// Chain tries fns in order and returns the first result with a usable
// abstract. Results are never merged. When nothing is usable it returns
// nil along with the joined errors, if any.
func Chain(log *logrus.Logger, fns ...metadata.LookupFunc) metadata.LookupFunc {
	return func(ctx context.Context, key string) (*models.LookupResult, error) {
		var errs []error

		for i, fn := range fns {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			r, err := fn(ctx, key)
			if err != nil {
				log.WithError(err).WithFields(logrus.Fields{"position": i, "key": key}).Debug("chained lookup failed")
				errs = append(errs, err)

				continue
			}

			if r.HasUsableAbstract() {
				return r, nil
			}
		}

		return nil, errors.Join(errs...)
	}
}
