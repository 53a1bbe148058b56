package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/domain"
	"github.com/persistorai/papergraph/internal/taxonomy"
)

// GraphHandler serves the graph snapshot, the tag hierarchy and node detail.
type GraphHandler struct {
	svc domain.GraphService
	log *logrus.Logger
}

// NewGraphHandler creates a GraphHandler.
func NewGraphHandler(svc domain.GraphService, log *logrus.Logger) *GraphHandler {
	return &GraphHandler{svc: svc, log: log}
}

// Graph handles GET /api/v1/graph.
func (h *GraphHandler) Graph(c *gin.Context) {
	data, err := h.svc.Graph(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, "graph.get", err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// TagTree handles GET /api/v1/tags/tree. Query parameters order,
// duplicates and empty_segments override the server defaults; collapsed
// is a comma-separated list of tag paths.
func (h *GraphHandler) TagTree(c *gin.Context) {
	opts := taxonomy.Options{
		Order:         taxonomy.SiblingOrder(c.Query("order")),
		Duplicates:    taxonomy.DuplicatePolicy(c.Query("duplicates")),
		EmptySegments: taxonomy.EmptySegments(c.Query("empty_segments")),
	}

	var collapsed taxonomy.CollapseState
	if raw := c.Query("collapsed"); raw != "" {
		collapsed = taxonomy.CollapsedFrom(strings.Split(raw, ","))
	}

	tree, err := h.svc.TagTree(c.Request.Context(), opts, collapsed)
	if err != nil {
		respondServiceError(c, h.log, "tags.tree", err)
		return
	}

	c.JSON(http.StatusOK, tree)
}

// Node handles GET /api/v1/nodes/:id.
func (h *GraphHandler) Node(c *gin.Context) {
	nodeID := c.Param("id")
	if err := validatePathID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	detail, err := h.svc.NodeDetail(c.Request.Context(), nodeID)
	if err != nil {
		respondServiceError(c, h.log, "node.get", err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
