package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/papergraph/internal/api"
	"github.com/persistorai/papergraph/internal/models"
)

func entryRouter(svc *mockEntryService) *gin.Engine {
	r := gin.New()
	h := api.NewEntryHandler(svc, testLogger())
	r.POST("/entries", h.Create)
	r.POST("/entries/import", h.Import)

	return r
}

func TestEntryCreate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{name: "created", body: `{"entries":[{"name":"Paper","tag":"ML/NLP"}]}`, wantCode: http.StatusCreated},
		{name: "bad json", body: `{"entries":`, wantCode: http.StatusBadRequest},
		{name: "empty batch", body: `{"entries":[]}`, wantCode: http.StatusBadRequest},
		{name: "validation", body: `{"entries":[{"tag":"ML"}]}`, err: fmt.Errorf("entry 0: %w", models.ErrMissingName), wantCode: http.StatusBadRequest},
		{name: "field too long", body: `{"entries":[{"name":"x"}]}`, err: models.ErrFieldTooLong("name", 1000), wantCode: http.StatusBadRequest},
		{name: "id collision", body: `{"entries":[{"name":"ML"}]}`, err: models.ErrDuplicateKey, wantCode: http.StatusConflict},
		{name: "store down", body: `{"entries":[{"name":"x"}]}`, err: errors.New("db down"), wantCode: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockEntryService{addFn: func(_ context.Context, list []models.Entry) ([]models.EntryResult, error) {
				if tc.err != nil {
					return nil, tc.err
				}

				out := make([]models.EntryResult, len(list))
				for i, e := range list {
					out[i].Document = models.Node{Title: e.Name}
				}

				return out, nil
			}}

			w := doRequest(entryRouter(svc), http.MethodPost, "/entries", tc.body)
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestEntryImport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		body      string
		wantCode  int
		wantNames []string
	}{
		{
			name:      "csv",
			body:      "Name,Tag,Link,Date Added\nPaper,ML,https://arxiv.org/abs/1,2024-01-02\nOther,Bio,,\n",
			wantCode:  http.StatusOK,
			wantNames: []string{"Paper", "Other"},
		},
		{
			name:     "csv missing column",
			body:     "Title,Tag\nPaper,ML\n",
			wantCode: http.StatusBadRequest,
		},
		{
			name:      "inline",
			query:     "?format=inline",
			body:      "Paper, ML, https://x.org; Notes, Misc",
			wantCode:  http.StatusOK,
			wantNames: []string{"Paper", "Notes"},
		},
		{
			name:     "unknown format",
			query:    "?format=xml",
			body:     "<x/>",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got []string

			svc := &mockEntryService{importFn: func(_ context.Context, list []models.Entry) (*models.ImportResult, error) {
				for _, e := range list {
					got = append(got, e.Name)
				}

				return &models.ImportResult{Imported: len(list)}, nil
			}}

			req := httptest.NewRequest(http.MethodPost, "/entries/import"+tc.query, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "text/csv")

			w := httptest.NewRecorder()
			entryRouter(svc).ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, w.Code, w.Body.String())
			}

			if strings.Join(got, "|") != strings.Join(tc.wantNames, "|") {
				t.Errorf("imported %v, want %v", got, tc.wantNames)
			}
		})
	}
}
