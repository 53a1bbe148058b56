package models

import "strings"

// Entry is a single submitted document: a name, a slash-delimited tag path,
// an optional link and the date it was added.
type Entry struct {
	Name  string `json:"name"`
	Tag   string `json:"tag"`
	Link  string `json:"link,omitempty"`
	Date  string `json:"date,omitempty"`
	Owner string `json:"user,omitempty"`
}

// Validate checks that required fields are present and within limits.
func (e *Entry) Validate() error {
	e.Name = strings.TrimSpace(e.Name)
	e.Tag = strings.TrimSpace(e.Tag)
	e.Link = strings.TrimSpace(e.Link)

	if e.Name == "" {
		return ErrMissingName
	}

	if len(e.Name) > 1000 {
		return ErrFieldTooLong("name", 1000)
	}

	if len(e.Tag) > 1000 {
		return ErrFieldTooLong("tag", 1000)
	}

	if len(e.Link) > 4096 {
		return ErrFieldTooLong("link", 4096)
	}

	if e.Owner == "" {
		e.Owner = DefaultOwner
	}

	return nil
}

// DefaultOwner is recorded on nodes created without an explicit user.
const DefaultOwner = "admin"

// CreateEntriesRequest is the payload for adding one or more entries.
type CreateEntriesRequest struct {
	Entries []Entry `json:"entries"`
}

// EntryResult reports what an upsert touched for one entry.
type EntryResult struct {
	Document Node   `json:"document"`
	Tags     []Node `json:"tags"`
	Links    []Link `json:"links"`
}

// ImportResult summarises a bulk entry import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
