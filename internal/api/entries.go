package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/domain"
	"github.com/persistorai/papergraph/internal/entries"
	"github.com/persistorai/papergraph/internal/models"
)

// EntryHandler ingests documents.
type EntryHandler struct {
	svc domain.EntryService
	log *logrus.Logger
}

// NewEntryHandler creates an EntryHandler.
func NewEntryHandler(svc domain.EntryService, log *logrus.Logger) *EntryHandler {
	return &EntryHandler{svc: svc, log: log}
}

// Create handles POST /api/v1/entries with a models.CreateEntriesRequest
// body. The batch is all-or-nothing with respect to validation.
func (h *EntryHandler) Create(c *gin.Context) {
	var req models.CreateEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if len(req.Entries) == 0 {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "entries must not be empty")
		return
	}

	results, err := h.svc.AddEntries(c.Request.Context(), req.Entries)
	if err != nil {
		respondServiceError(c, h.log, "entries.create", err)
		return
	}

	h.log.WithFields(logrus.Fields{"action": "entries.create", "count": len(results)}).Info("audit")

	c.JSON(http.StatusCreated, gin.H{"entries": results})
}

// Import handles POST /api/v1/entries/import. The body is a
// "Name,Tag,Link,Date Added" CSV, or with ?format=inline the
// "name, tag, link[, date]; ..." shorthand.
func (h *EntryHandler) Import(c *gin.Context) {
	var (
		list []models.Entry
		err  error
	)

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		list, err = entries.ParseCSV(c.Request.Body)
	case "inline":
		var raw []byte

		raw, err = c.GetRawData()
		if err == nil {
			list, err = entries.ParseInline(string(raw), time.Now())
		}
	default:
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "format must be csv or inline")
		return
	}

	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	res, err := h.svc.Import(c.Request.Context(), list)
	if err != nil {
		respondServiceError(c, h.log, "entries.import", err)
		return
	}

	h.log.WithFields(logrus.Fields{"action": "entries.import", "imported": res.Imported, "skipped": res.Skipped}).Info("audit")

	c.JSON(http.StatusOK, res)
}
