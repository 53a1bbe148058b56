package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/papergraph/internal/api"
	"github.com/persistorai/papergraph/internal/domain"
	"github.com/persistorai/papergraph/internal/models"
	"github.com/persistorai/papergraph/internal/taxonomy"
)

func graphRouter(svc *mockGraphService) *gin.Engine {
	r := gin.New()
	h := api.NewGraphHandler(svc, testLogger())
	r.GET("/graph", h.Graph)
	r.GET("/tags/tree", h.TagTree)
	r.GET("/nodes/:id", h.Node)

	return r
}

func TestGraph_OK(t *testing.T) {
	t.Parallel()

	svc := &mockGraphService{graphFn: func(context.Context) (*models.GraphData, error) {
		return &models.GraphData{
			Nodes: []models.Node{{ID: "a", Type: models.NodeTypeTag, Title: "ML", Val: 3}},
			Links: []models.Link{},
		}, nil
	}}

	w := doRequest(graphRouter(svc), http.MethodGet, "/graph", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body models.GraphData
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(body.Nodes) != 1 || body.Nodes[0].Val != 3 {
		t.Errorf("nodes = %+v", body.Nodes)
	}
}

func TestTagTree_PassesQuery(t *testing.T) {
	t.Parallel()

	var (
		gotOpts      taxonomy.Options
		gotCollapsed taxonomy.CollapseState
	)

	svc := &mockGraphService{treeFn: func(_ context.Context, opts taxonomy.Options, collapsed taxonomy.CollapseState) (*domain.TagTree, error) {
		gotOpts, gotCollapsed = opts, collapsed

		forest, err := taxonomy.Build([]models.TagRecord{{ID: "1", Path: "ML"}}, taxonomy.DefaultOptions())
		if err != nil {
			return nil, err
		}

		return &domain.TagTree{Forest: forest, Visible: taxonomy.Visible(forest, collapsed)}, nil
	}}

	w := doRequest(graphRouter(svc), http.MethodGet, "/tags/tree?order=insertion&duplicates=keep_first&collapsed=ML,%20Bio/Genes%20", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if gotOpts.Order != taxonomy.OrderInsertion || gotOpts.Duplicates != taxonomy.DuplicateKeepFirst || gotOpts.EmptySegments != "" {
		t.Errorf("opts = %+v", gotOpts)
	}

	if !gotCollapsed.IsCollapsed("ML") || !gotCollapsed.IsCollapsed("Bio/Genes") {
		t.Errorf("collapsed = %v", gotCollapsed)
	}

	var body struct {
		Roots   []json.RawMessage `json:"roots"`
		Visible []taxonomy.Row    `json:"visible"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(body.Roots) != 1 || len(body.Visible) != 1 {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestTagTree_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "bad option", err: fmt.Errorf("%w: unknown sibling order", taxonomy.ErrInvalidOptions), wantCode: http.StatusBadRequest},
		{name: "duplicate path under fail", err: fmt.Errorf("%w: ML", taxonomy.ErrDuplicatePath), wantCode: http.StatusConflict},
		{name: "store failure", err: fmt.Errorf("loading graph: boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockGraphService{treeFn: func(context.Context, taxonomy.Options, taxonomy.CollapseState) (*domain.TagTree, error) {
				return nil, tc.err
			}}

			w := doRequest(graphRouter(svc), http.MethodGet, "/tags/tree", "")
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestNode_Get(t *testing.T) {
	t.Parallel()

	svc := &mockGraphService{detailFn: func(_ context.Context, id string) (*models.NodeDetail, error) {
		if id != "abc" {
			return nil, models.ErrNodeNotFound
		}

		return &models.NodeDetail{
			Node:    models.Node{ID: "abc", Type: models.NodeTypeDocument, Title: "Paper"},
			DocType: models.DocTypeInfo{Label: "PDF Document", Type: models.DocTypePDF},
		}, nil
	}}
	r := graphRouter(svc)

	w := doRequest(r, http.MethodGet, "/nodes/abc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/nodes/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	if body := decodeError(t, w); body.Code != api.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", body.Code, api.ErrCodeNotFound)
	}
}
