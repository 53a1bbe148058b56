package models

import (
	"strconv"
	"strings"
	"time"
)

// Source identifies which lookup service produced a metadata record.
type Source string

// Known metadata sources.
const (
	SourceSemanticScholarByDOI   Source = "semantic-scholar-by-doi"
	SourceSemanticScholarByTitle Source = "semantic-scholar-by-title"
	SourceCrossrefByDOI          Source = "crossref-by-doi"
	SourceArxivByID              Source = "arxiv-by-id"
)

// LookupResult is the raw shape returned by a lookup service before it is
// normalised into a MetadataRecord.
type LookupResult struct {
	Source        Source
	Title         string
	Authors       []string
	Abstract      string
	Venue         string
	Year          int
	PublishedDate string
	DOI           string
}

// HasUsableAbstract reports whether the abstract is non-empty after trimming.
func (r *LookupResult) HasUsableAbstract() bool {
	return r != nil && strings.TrimSpace(r.Abstract) != ""
}

// MetadataRecord is the resolved bibliographic data for one reference.
type MetadataRecord struct {
	Title     string `json:"title"`
	Authors   string `json:"author"`
	Abstract  string `json:"abstract"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
	DOI       string `json:"doi,omitempty"`
	Source    Source `json:"data_source"`
}

// NewMetadataRecord normalises a lookup result. Authors are comma-joined,
// the venue becomes the publisher, and the date is the year when known,
// otherwise the published date as given by the source.
func NewMetadataRecord(r *LookupResult) *MetadataRecord {
	date := r.PublishedDate
	if r.Year > 0 {
		date = strconv.Itoa(r.Year)
	}

	authors := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}

	return &MetadataRecord{
		Title:     strings.TrimSpace(r.Title),
		Authors:   strings.Join(authors, ", "),
		Abstract:  strings.TrimSpace(r.Abstract),
		Publisher: strings.TrimSpace(r.Venue),
		Date:      date,
		DOI:       strings.TrimSpace(r.DOI),
		Source:    r.Source,
	}
}

// StoredMetadata is a resolved record persisted against a document node.
type StoredMetadata struct {
	NodeID     string         `json:"node_id"`
	Record     MetadataRecord `json:"record"`
	ResolvedAt time.Time      `json:"resolved_at"`
}

// DocType is the coarse kind of document a link points at.
type DocType string

// Document kinds inferred from links.
const (
	DocTypeVideo      DocType = "video"
	DocTypePDF        DocType = "pdf"
	DocTypeWhitepaper DocType = "whitepaper"
	DocTypeWebpage    DocType = "webpage"
	DocTypeOther      DocType = "other"
)

// DocTypeInfo is a display label plus the inferred kind.
type DocTypeInfo struct {
	Label string  `json:"label"`
	Type  DocType `json:"type"`
}
