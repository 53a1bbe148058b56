package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) *Client {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return New(srv.URL + "/")
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestHealth(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "1.2.0", Lookups: map[string]string{"arxiv": "closed"}})
		},
	})

	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}

	if resp.Status != "ok" || resp.Version != "1.2.0" || resp.Lookups["arxiv"] != "closed" {
		t.Errorf("got %+v", resp)
	}
}

func TestReady_NotReady(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/ready": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 503, ReadinessResponse{Status: "not_ready", Checks: map[string]string{"database": "error"}})
		},
	})

	resp, err := c.Ready(context.Background())
	if err == nil {
		t.Fatal("expected error for 503")
	}

	if resp == nil || resp.Checks["database"] != "error" {
		t.Errorf("checks not decoded: %+v", resp)
	}
}

func TestTagTree_Query(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/tags/tree": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("order") != "insertion" || q.Get("collapsed") != "ML,Bio" || q.Has("duplicates") {
				t.Errorf("query = %s", r.URL.RawQuery)
			}

			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"roots":[{"label":"ML","depth":0,"path":"ML","children":[]}],"dropped":[],"duplicates":[],"visible":[{"label":"ML","path":"ML","depth":0,"has_children":false,"collapsed":false}]}`) //nolint:errcheck
		},
	})

	tree, err := c.Graph.TagTree(context.Background(), TreeOptions{Order: "insertion", Collapsed: []string{"ML", "Bio"}})
	if err != nil {
		t.Fatalf("TagTree() error: %v", err)
	}

	if tree.Forest == nil || len(tree.Roots) != 1 || tree.Roots[0].Label != "ML" {
		t.Errorf("roots not decoded: %+v", tree)
	}

	if len(tree.Visible) != 1 {
		t.Errorf("visible = %+v", tree.Visible)
	}
}

func TestResolve(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/metadata": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("ref") != "https://doi.org/10.1000/x y" {
				t.Errorf("ref = %q", r.URL.Query().Get("ref"))
			}

			jsonResponse(w, 200, MetadataRecord{Title: "T", Abstract: "A", Source: "crossref-by-doi"})
		},
	})

	rec, err := c.Metadata.Resolve(context.Background(), "https://doi.org/10.1000/x y")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if rec.Source != "crossref-by-doi" {
		t.Errorf("source = %q", rec.Source)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{name: "not found", status: 404, check: IsNotFound},
		{name: "conflict", status: 409, check: IsConflict},
		{name: "rate limited", status: 429, check: IsRateLimited},
		{name: "upstream down", status: 503, check: IsUpstreamUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestServer(t, map[string]http.HandlerFunc{
				"GET /api/v1/nodes/{id}": func(w http.ResponseWriter, _ *http.Request) {
					jsonResponse(w, tc.status, map[string]string{"code": "x", "message": "m", "request_id": "r1"})
				},
			})

			_, err := c.Nodes.Get(context.Background(), "abc")
			if !tc.check(err) {
				t.Fatalf("check failed for %v", err)
			}

			apiErr, ok := err.(*APIError)
			if !ok || apiErr.RequestID != "r1" {
				t.Errorf("err = %#v", err)
			}
		})
	}
}

func TestEntries(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/entries": func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Entries []Entry `json:"entries"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Entries) != 2 {
				t.Errorf("decode: %v, %d entries", err, len(req.Entries))
			}

			jsonResponse(w, 201, map[string]any{"entries": []EntryResult{{Document: Node{Title: "A"}}, {Document: Node{Title: "B"}}}})
		},
		"POST /api/v1/entries/import": func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") != "text/csv" {
				t.Errorf("content type = %q", r.Header.Get("Content-Type"))
			}

			jsonResponse(w, 200, ImportResult{Imported: 3})
		},
		"POST /api/v1/admin/backfill-metadata": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("limit") != "25" {
				t.Errorf("limit = %q", r.URL.Query().Get("limit"))
			}

			jsonResponse(w, 200, map[string]int{"queued": 4})
		},
	})

	ctx := context.Background()

	results, err := c.Entries.Add(ctx, Entry{Name: "A", Tag: "X"}, Entry{Name: "B", Tag: "X"})
	if err != nil || len(results) != 2 {
		t.Fatalf("Add() = %v, %v", results, err)
	}

	res, err := c.Entries.ImportCSV(ctx, strings.NewReader("name,tag\nA,X\n"))
	if err != nil || res.Imported != 3 {
		t.Fatalf("ImportCSV() = %+v, %v", res, err)
	}

	queued, err := c.Admin.BackfillMetadata(ctx, 25)
	if err != nil || queued != 4 {
		t.Fatalf("BackfillMetadata() = %d, %v", queued, err)
	}
}
