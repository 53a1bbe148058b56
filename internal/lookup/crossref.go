package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/models"
)

// DefaultCrossrefURL is the CrossRef REST API base.
const DefaultCrossrefURL = "https://api.crossref.org"

var (
	jatsTag    = regexp.MustCompile(`<[^>]+>`)
	whitespace = regexp.MustCompile(`\s+`)
)

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Title          []string         `json:"title"`
	Author         []crossrefAuthor `json:"author"`
	Abstract       string           `json:"abstract"`
	ContainerTitle []string         `json:"container-title"`
	Publisher      string           `json:"publisher"`
	Issued         struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
}

type crossrefEnvelope struct {
	Status  string       `json:"status"`
	Message crossrefWork `json:"message"`
}

// Crossref looks works up by DOI.
type Crossref struct {
	svc     *service
	baseURL string
	mailto  string
}

// NewCrossref creates a client. mailto, when set, is sent so requests land
// in CrossRef's polite pool.
func NewCrossref(baseURL, mailto string, client *http.Client, log *logrus.Logger) *Crossref {
	if baseURL == "" {
		baseURL = DefaultCrossrefURL
	}

	return &Crossref{
		svc:     newService("crossref", client, log),
		baseURL: strings.TrimRight(baseURL, "/"),
		mailto:  mailto,
	}
}

// ByDOI fetches the work registered under doi.
func (c *Crossref) ByDOI(ctx context.Context, doi string) (*models.LookupResult, error) {
	u := c.baseURL + "/works/" + escapeDOI(doi)

	h := http.Header{}
	if c.mailto != "" {
		u += "?" + url.Values{"mailto": {c.mailto}}.Encode()
		h.Set("User-Agent", fmt.Sprintf("%s (mailto:%s)", userAgent, c.mailto))
	}

	resp, err := c.svc.get(ctx, u, h)
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
	case http.StatusNotFound:
		c.svc.record(outcomeAbsent)
		return nil, nil
	default:
		return nil, c.svc.unexpected(resp)
	}

	var env crossrefEnvelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		c.svc.record(outcomeError)
		return nil, fmt.Errorf("crossref: decoding work: %w", err)
	}

	c.svc.record(outcomeFound)

	return env.Message.result(), nil
}

func (w *crossrefWork) result() *models.LookupResult {
	authors := make([]string, 0, len(w.Author))
	for _, a := range w.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name == "" {
			name = a.Name
		}

		authors = append(authors, name)
	}

	r := &models.LookupResult{
		Source:   models.SourceCrossrefByDOI,
		Authors:  authors,
		Abstract: stripJATS(w.Abstract),
		Venue:    w.Publisher,
		DOI:      w.DOI,
	}

	if len(w.Title) > 0 {
		r.Title = w.Title[0]
	}

	if len(w.ContainerTitle) > 0 && w.ContainerTitle[0] != "" {
		r.Venue = w.ContainerTitle[0]
	}

	if len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 {
		r.Year = w.Issued.DateParts[0][0]
	}

	return r
}

// stripJATS removes JATS XML markup from CrossRef abstracts.
func stripJATS(s string) string {
	s = jatsTag.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
