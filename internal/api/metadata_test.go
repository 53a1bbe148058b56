package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/papergraph/internal/api"
	"github.com/persistorai/papergraph/internal/lookup"
	"github.com/persistorai/papergraph/internal/models"
	"github.com/persistorai/papergraph/internal/service"
)

func metadataRouter(svc *mockMetadataService) *gin.Engine {
	r := gin.New()
	h := api.NewMetadataHandler(svc, testLogger())
	r.GET("/metadata", h.Resolve)
	r.GET("/nodes/:id/metadata", h.NodeMetadata)
	r.POST("/admin/backfill-metadata", h.Backfill)

	return r
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "resolved", query: "?ref=10.1000/xyz", wantCode: http.StatusOK},
		{name: "missing ref", query: "", wantCode: http.StatusBadRequest, wantErr: api.ErrCodeValidationError},
		{name: "blank ref", query: "?ref=%20%20", wantCode: http.StatusBadRequest, wantErr: api.ErrCodeValidationError},
		{name: "ref too long", query: "?ref=" + strings.Repeat("a", 3000), wantCode: http.StatusBadRequest, wantErr: api.ErrCodeValidationError},
		{
			name:     "nothing usable",
			query:    "?ref=Some+Title",
			err:      models.ErrNoUsableMetadata,
			wantCode: http.StatusNotFound,
			wantErr:  api.ErrCodeNoMetadata,
		},
		{
			name:     "exhausted after upstream outage",
			query:    "?ref=Some+Title",
			err:      fmt.Errorf("%w (last lookup error: %w)", models.ErrNoUsableMetadata, lookup.ErrServiceUnavailable),
			wantCode: http.StatusNotFound,
			wantErr:  api.ErrCodeNoMetadata,
		},
		{
			name:     "bare upstream outage",
			query:    "?ref=Some+Title",
			err:      fmt.Errorf("semanticscholar: %w", lookup.ErrServiceUnavailable),
			wantCode: http.StatusServiceUnavailable,
			wantErr:  api.ErrCodeUpstreamUnavailable,
		},
		{
			name:     "deadline",
			query:    "?ref=Some+Title",
			err:      fmt.Errorf("resolving: %w", context.DeadlineExceeded),
			wantCode: http.StatusGatewayTimeout,
			wantErr:  api.ErrCodeTimeout,
		},
		{
			name:     "caller went away",
			query:    "?ref=Some+Title",
			err:      fmt.Errorf("resolving: %w", context.Canceled),
			wantCode: 499,
			wantErr:  api.ErrCodeCanceled,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockMetadataService{resolveFn: func(_ context.Context, ref string) (*models.MetadataRecord, error) {
				if tc.err != nil {
					return nil, tc.err
				}

				return &models.MetadataRecord{Title: "T", Abstract: "A", DOI: ref, Source: models.SourceCrossrefByDOI}, nil
			}}

			w := doRequest(metadataRouter(svc), http.MethodGet, "/metadata"+tc.query, "")
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, w.Code, w.Body.String())
			}

			if tc.wantErr != "" {
				if body := decodeError(t, w); body.Code != tc.wantErr {
					t.Errorf("code = %q, want %q", body.Code, tc.wantErr)
				}

				return
			}

			var rec models.MetadataRecord
			if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if rec.DOI != "10.1000/xyz" || rec.Source != models.SourceCrossrefByDOI {
				t.Errorf("record = %+v", rec)
			}
		})
	}
}

func TestNodeMetadata(t *testing.T) {
	t.Parallel()

	svc := &mockMetadataService{nodeFn: func(_ context.Context, id string) (*models.StoredMetadata, error) {
		switch id {
		case "paper":
			return &models.StoredMetadata{NodeID: id, Record: models.MetadataRecord{Title: "T"}}, nil
		case "blog":
			return nil, fmt.Errorf("node blog: %w", service.ErrNotResearchLink)
		default:
			return nil, models.ErrNodeNotFound
		}
	}}
	r := metadataRouter(svc)

	tests := []struct {
		path     string
		wantCode int
	}{
		{"/nodes/paper/metadata", http.StatusOK},
		{"/nodes/blog/metadata", http.StatusNotFound},
		{"/nodes/nope/metadata", http.StatusNotFound},
		{"/nodes/" + strings.Repeat("x", 65) + "/metadata", http.StatusBadRequest},
	}

	for _, tc := range tests {
		if w := doRequest(r, http.MethodGet, tc.path, ""); w.Code != tc.wantCode {
			t.Errorf("%s: expected %d, got %d", tc.path, tc.wantCode, w.Code)
		}
	}
}

func TestBackfill(t *testing.T) {
	t.Parallel()

	var gotLimit int

	svc := &mockMetadataService{backfillFn: func(_ context.Context, limit int) (int, error) {
		gotLimit = limit
		return 7, nil
	}}

	w := doRequest(metadataRouter(svc), http.MethodPost, "/admin/backfill-metadata?limit=50", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if gotLimit != 50 {
		t.Errorf("limit = %d, want 50", gotLimit)
	}

	var body struct {
		Queued int `json:"queued"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Queued != 7 {
		t.Errorf("body = %s", w.Body.String())
	}
}
