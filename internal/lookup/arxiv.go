package lookup

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/models"
)

// DefaultArxivURL is the arXiv export API query endpoint.
const DefaultArxivURL = "https://export.arxiv.org/api/query"

// Atom feed structures for the arXiv API.

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string       `xml:"id"`
	Title      string       `xml:"title"`
	Summary    string       `xml:"summary"`
	Authors    []atomAuthor `xml:"author"`
	Published  string       `xml:"published"`
	JournalRef string       `xml:"journal_ref"`
	DOI        string       `xml:"doi"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// Arxiv fetches a single preprint by identifier.
type Arxiv struct {
	svc     *service
	baseURL string
}

// NewArxiv creates a client. An empty baseURL uses the public export API.
func NewArxiv(baseURL string, client *http.Client, log *logrus.Logger) *Arxiv {
	if baseURL == "" {
		baseURL = DefaultArxivURL
	}

	return &Arxiv{svc: newService("arxiv", client, log), baseURL: baseURL}
}

// ByID returns the preprint for a version-less id such as 1712.09913.
func (a *Arxiv) ByID(ctx context.Context, id string) (*models.LookupResult, error) {
	resp, err := a.svc.get(ctx, a.baseURL+"?"+url.Values{"id_list": {id}}.Encode(), nil)
	if err != nil {
		return nil, err
	}

	if resp.status != http.StatusOK {
		return nil, a.svc.unexpected(resp)
	}

	var feed atomFeed
	if err := xml.Unmarshal(resp.body, &feed); err != nil {
		a.svc.record(outcomeError)
		return nil, fmt.Errorf("arxiv: parse xml: %w", err)
	}

	// Unknown ids come back as an empty feed or a single error entry.
	if len(feed.Entries) == 0 || strings.Contains(feed.Entries[0].ID, "/api/errors") {
		a.svc.record(outcomeAbsent)
		return nil, nil
	}

	entry := feed.Entries[0]

	authors := make([]string, 0, len(entry.Authors))
	for _, au := range entry.Authors {
		authors = append(authors, strings.TrimSpace(au.Name))
	}

	venue := strings.TrimSpace(entry.JournalRef)
	if venue == "" {
		venue = "arXiv"
	}

	a.svc.record(outcomeFound)

	return &models.LookupResult{
		Source:        models.SourceArxivByID,
		Title:         collapseSpace(entry.Title),
		Authors:       authors,
		Abstract:      strings.TrimSpace(entry.Summary),
		Venue:         venue,
		PublishedDate: entry.Published,
		DOI:           strings.TrimSpace(entry.DOI),
	}, nil
}

// collapseSpace folds the line wrapping arXiv puts in titles.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
