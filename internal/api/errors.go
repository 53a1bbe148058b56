package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/httputil"
	"github.com/persistorai/papergraph/internal/lookup"
	"github.com/persistorai/papergraph/internal/middleware"
	"github.com/persistorai/papergraph/internal/models"
	"github.com/persistorai/papergraph/internal/service"
	"github.com/persistorai/papergraph/internal/taxonomy"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest      = "invalid_request"
	ErrCodeValidationError     = "validation_error"
	ErrCodeNotFound            = "not_found"
	ErrCodeNoMetadata          = "no_metadata"
	ErrCodeConflict            = "conflict"
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
	ErrCodeTimeout             = "timeout"
	ErrCodeInternalError       = "internal_error"
	ErrCodeUnavailable         = "unavailable"
	ErrCodeCanceled            = "canceled"
)

// statusClientClosedRequest is reported when the caller went away before
// the response was ready.
const statusClientClosedRequest = 499

// respondError writes a standardized JSON error response.
func respondError(c *gin.Context, status int, code, message string) {
	httputil.RespondError(c, status, code, message)
}

// errorMapping ties sentinel errors to responses. The first match wins, so
// an exhausted chain is a 404 even when it carries the last lookup outage.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{models.ErrNoUsableMetadata, http.StatusNotFound, ErrCodeNoMetadata},
	{lookup.ErrServiceUnavailable, http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable},
	{models.ErrNodeNotFound, http.StatusNotFound, ErrCodeNotFound},
	{models.ErrMetadataNotFound, http.StatusNotFound, ErrCodeNoMetadata},
	{service.ErrNotResearchLink, http.StatusNotFound, ErrCodeNoMetadata},
	{models.ErrMissingName, http.StatusBadRequest, ErrCodeValidationError},
	{models.ErrMissingReference, http.StatusBadRequest, ErrCodeValidationError},
	{models.ErrInvalidField, http.StatusBadRequest, ErrCodeValidationError},
	{service.ErrTooManyEntries, http.StatusBadRequest, ErrCodeValidationError},
	{taxonomy.ErrInvalidOptions, http.StatusBadRequest, ErrCodeInvalidRequest},
	{models.ErrDuplicateKey, http.StatusConflict, ErrCodeConflict},
	{taxonomy.ErrDuplicatePath, http.StatusConflict, ErrCodeConflict},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeTimeout},
	{context.Canceled, statusClientClosedRequest, ErrCodeCanceled},
}

// respondServiceError maps err to a status and code. Unmapped errors are
// logged and reported as 500 without detail.
func respondServiceError(c *gin.Context, log *logrus.Logger, action string, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			respondError(c, m.status, m.code, err.Error())
			return
		}
	}

	middleware.LogEntry(c, log).WithError(err).WithField("action", action).Error("request failed")
	respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}
