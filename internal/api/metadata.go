package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/domain"
)

// maxReferenceLen bounds the ref query parameter.
const maxReferenceLen = 2048

// MetadataHandler serves bibliographic metadata.
type MetadataHandler struct {
	svc domain.MetadataService
	log *logrus.Logger
}

// NewMetadataHandler creates a MetadataHandler.
func NewMetadataHandler(svc domain.MetadataService, log *logrus.Logger) *MetadataHandler {
	return &MetadataHandler{svc: svc, log: log}
}

// Resolve handles GET /api/v1/metadata?ref=. Nothing is stored.
func (h *MetadataHandler) Resolve(c *gin.Context) {
	ref := strings.TrimSpace(c.Query("ref"))
	if ref == "" {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "ref query parameter is required")
		return
	}

	if len(ref) > maxReferenceLen {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "ref is too long")
		return
	}

	rec, err := h.svc.Resolve(c.Request.Context(), ref)
	if err != nil {
		respondServiceError(c, h.log, "metadata.resolve", err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// NodeMetadata handles GET /api/v1/nodes/:id/metadata.
func (h *MetadataHandler) NodeMetadata(c *gin.Context) {
	nodeID := c.Param("id")
	if err := validatePathID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	stored, err := h.svc.NodeMetadata(c.Request.Context(), nodeID)
	if err != nil {
		respondServiceError(c, h.log, "node.metadata", err)
		return
	}

	c.JSON(http.StatusOK, stored)
}

// Backfill handles POST /api/v1/admin/backfill-metadata.
func (h *MetadataHandler) Backfill(c *gin.Context) {
	limit := parseLimit(c.DefaultQuery("limit", "1000"), 1000)

	queued, err := h.svc.Backfill(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, h.log, "admin.backfill_metadata", err)
		return
	}

	h.log.WithFields(logrus.Fields{"action": "admin.backfill_metadata", "queued": queued}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"queued": queued})
}
