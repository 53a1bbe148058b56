package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// GraphService reads the graph and tag hierarchy.
type GraphService struct{ c *Client }

// Get returns the full graph snapshot.
func (s *GraphService) Get(ctx context.Context) (*GraphData, error) {
	var resp GraphData
	if err := s.c.get(ctx, "/api/v1/graph", nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// TagTree builds the tag hierarchy with the given overrides.
func (s *GraphService) TagTree(ctx context.Context, opts TreeOptions) (*TagTree, error) {
	params := url.Values{}
	setIf(params, "order", opts.Order)
	setIf(params, "duplicates", opts.Duplicates)
	setIf(params, "empty_segments", opts.EmptySegments)
	setIf(params, "collapsed", strings.Join(opts.Collapsed, ","))

	var resp TagTree
	if err := s.c.get(ctx, "/api/v1/tags/tree", params, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// NodeService reads single nodes.
type NodeService struct{ c *Client }

// Get returns a node with its inferred document type.
func (s *NodeService) Get(ctx context.Context, id string) (*NodeDetail, error) {
	var resp NodeDetail
	if err := s.c.get(ctx, "/api/v1/nodes/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Metadata returns the stored record for a document, resolving it on the
// server if needed.
func (s *NodeService) Metadata(ctx context.Context, id string) (*StoredMetadata, error) {
	var resp StoredMetadata
	if err := s.c.get(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/metadata", nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// MetadataService runs live resolutions.
type MetadataService struct{ c *Client }

// Resolve resolves a URL, DOI, arXiv link or title without storing it.
func (s *MetadataService) Resolve(ctx context.Context, ref string) (*MetadataRecord, error) {
	var resp MetadataRecord
	if err := s.c.get(ctx, "/api/v1/metadata", url.Values{"ref": {ref}}, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// EntryService submits documents.
type EntryService struct{ c *Client }

// Add submits entries as one all-or-nothing validated batch.
func (s *EntryService) Add(ctx context.Context, entries ...Entry) ([]EntryResult, error) {
	var resp struct {
		Entries []EntryResult `json:"entries"`
	}

	if err := s.c.post(ctx, "/api/v1/entries", map[string]any{"entries": entries}, &resp); err != nil {
		return nil, err
	}

	return resp.Entries, nil
}

// ImportCSV uploads a "Name,Tag,Link,Date Added" CSV.
func (s *EntryService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var resp ImportResult
	if err := s.c.send(ctx, http.MethodPost, "/api/v1/entries/import", "text/csv", r, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// ImportInline uploads the "name, tag, link[, date]; ..." shorthand.
func (s *EntryService) ImportInline(ctx context.Context, raw string) (*ImportResult, error) {
	var resp ImportResult

	err := s.c.send(ctx, http.MethodPost, "/api/v1/entries/import?format=inline", "text/plain", strings.NewReader(raw), &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// AdminService wraps maintenance endpoints.
type AdminService struct{ c *Client }

// BackfillMetadata queues enrichment for up to limit documents without
// stored metadata and returns how many were queued.
func (s *AdminService) BackfillMetadata(ctx context.Context, limit int) (int, error) {
	path := "/api/v1/admin/backfill-metadata"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var resp struct {
		Queued int `json:"queued"`
	}

	if err := s.c.post(ctx, path, nil, &resp); err != nil {
		return 0, err
	}

	return resp.Queued, nil
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
