package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/models"
)

// DefaultSemanticScholarURL is the Graph API base.
const DefaultSemanticScholarURL = "https://api.semanticscholar.org/graph/v1"

const (
	s2DOIFields    = "title,authors,abstract,venue,year,externalIds"
	s2SearchFields = "title,authors,abstract,venue,year"
)

type s2Author struct {
	Name string `json:"name"`
}

type s2Paper struct {
	PaperID     string     `json:"paperId"`
	Title       string     `json:"title"`
	Abstract    string     `json:"abstract"`
	Venue       string     `json:"venue"`
	Year        int        `json:"year"`
	Authors     []s2Author `json:"authors"`
	ExternalIDs struct {
		DOI string `json:"DOI"`
	} `json:"externalIds"`
}

type s2Search struct {
	Total int       `json:"total"`
	Data  []s2Paper `json:"data"`
}

// SemanticScholar looks papers up by DOI or by title search.
type SemanticScholar struct {
	svc     *service
	baseURL string
	apiKey  string
}

// NewSemanticScholar creates a client. An empty baseURL uses the public API;
// an empty apiKey sends unauthenticated requests.
func NewSemanticScholar(baseURL, apiKey string, client *http.Client, log *logrus.Logger) *SemanticScholar {
	if baseURL == "" {
		baseURL = DefaultSemanticScholarURL
	}

	return &SemanticScholar{
		svc:     newService("semanticscholar", client, log),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (s *SemanticScholar) header() http.Header {
	h := http.Header{}
	if s.apiKey != "" {
		h.Set("x-api-key", s.apiKey)
	}

	return h
}

// ByDOI fetches a single paper by DOI. A 404 is reported as absent.
func (s *SemanticScholar) ByDOI(ctx context.Context, doi string) (*models.LookupResult, error) {
	u := fmt.Sprintf("%s/paper/DOI:%s?fields=%s", s.baseURL, escapeDOI(doi), s2DOIFields)

	resp, err := s.svc.get(ctx, u, s.header())
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
	case http.StatusNotFound:
		s.svc.record(outcomeAbsent)
		return nil, nil
	default:
		return nil, s.svc.unexpected(resp)
	}

	var p s2Paper
	if err := json.Unmarshal(resp.body, &p); err != nil {
		s.svc.record(outcomeError)
		return nil, fmt.Errorf("semanticscholar: decoding paper: %w", err)
	}

	s.svc.record(outcomeFound)

	return p.result(models.SourceSemanticScholarByDOI), nil
}

// ByTitle returns the top search hit for title.
func (s *SemanticScholar) ByTitle(ctx context.Context, title string) (*models.LookupResult, error) {
	q := url.Values{}
	q.Set("query", title)
	q.Set("fields", s2SearchFields)
	q.Set("limit", "1")

	resp, err := s.svc.get(ctx, s.baseURL+"/paper/search?"+q.Encode(), s.header())
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
	case http.StatusNotFound:
		s.svc.record(outcomeAbsent)
		return nil, nil
	default:
		return nil, s.svc.unexpected(resp)
	}

	var sr s2Search
	if err := json.Unmarshal(resp.body, &sr); err != nil {
		s.svc.record(outcomeError)
		return nil, fmt.Errorf("semanticscholar: decoding search: %w", err)
	}

	if len(sr.Data) == 0 {
		s.svc.record(outcomeAbsent)
		return nil, nil
	}

	s.svc.record(outcomeFound)

	return sr.Data[0].result(models.SourceSemanticScholarByTitle), nil
}

func (p *s2Paper) result(src models.Source) *models.LookupResult {
	authors := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		authors = append(authors, a.Name)
	}

	return &models.LookupResult{
		Source:   src,
		Title:    p.Title,
		Authors:  authors,
		Abstract: p.Abstract,
		Venue:    p.Venue,
		Year:     p.Year,
		DOI:      p.ExternalIDs.DOI,
	}
}

// escapeDOI path-escapes each segment of doi, keeping the slashes.
func escapeDOI(doi string) string {
	parts := strings.Split(doi, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}

	return strings.Join(parts, "/")
}
