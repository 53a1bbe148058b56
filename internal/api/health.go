// Package api provides the HTTP handlers for papergraph.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DBHealth checks database connectivity.
type DBHealth interface {
	HealthCheck(ctx context.Context) error
}

// SchemaVersionFunc reports the applied migration version.
type SchemaVersionFunc func(ctx context.Context) (int64, error)

// BreakerReporter reports circuit breaker state per upstream service.
type BreakerReporter interface {
	BreakerStates() map[string]string
}

// ConnectionCounter reports connected WebSocket clients.
type ConnectionCounter interface {
	ClientCount() int
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db         DBHealth
	schema     SchemaVersionFunc
	wantSchema int64
	breakers   BreakerReporter
	conns      ConnectionCounter
	log        *logrus.Logger
	version    string
	startTime  time.Time
}

// HealthDeps groups what the health endpoints inspect. Nil fields are
// reported as not configured.
type HealthDeps struct {
	DB         DBHealth
	Schema     SchemaVersionFunc
	WantSchema int64
	Breakers   BreakerReporter
	Conns      ConnectionCounter
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(deps HealthDeps, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		db:         deps.DB,
		schema:     deps.Schema,
		wantSchema: deps.WantSchema,
		breakers:   deps.Breakers,
		conns:      deps.Conns,
		log:        log,
		version:    version,
		startTime:  time.Now(),
	}
}

type healthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Database      string            `json:"database"`
	Lookups       map[string]string `json:"lookups,omitempty"`
	Connections   int               `json:"ws_connections"`
	UptimeSeconds float64           `json:"uptime_seconds"`
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Liveness handles GET /api/v1/health. It always answers 200 and reports
// dependency state as fields.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Database:      "not_configured",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp.Database = "connected"
		if err := h.db.HealthCheck(ctx); err != nil {
			resp.Database = "disconnected"
		}
	}

	if h.breakers != nil {
		resp.Lookups = h.breakers.BreakerStates()
	}

	if h.conns != nil {
		resp.Connections = h.conns.ClientCount()
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready: the database must answer and the
// schema must be at the version this binary embeds. Open lookup breakers
// degrade but do not fail readiness.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{"database": "ok", "schema": "ok", "lookups": "ok"}
	ready := true

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if h.db == nil || h.db.HealthCheck(ctx) != nil {
		h.log.Error("readiness: database health check failed")
		checks["database"] = "error"
		checks["schema"] = "unknown"
		ready = false
	} else if h.schema != nil {
		v, err := h.schema(ctx)
		if err != nil || v < h.wantSchema {
			h.log.WithError(err).WithFields(logrus.Fields{"have": v, "want": h.wantSchema}).Error("readiness: schema check failed")
			checks["schema"] = "error"
			ready = false
		}
	}

	if h.breakers != nil {
		for _, state := range h.breakers.BreakerStates() {
			if state != "closed" {
				checks["lookups"] = "degraded"
			}
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "not_ready", Checks: checks})
		return
	}

	c.JSON(http.StatusOK, readinessResponse{Status: "ready", Checks: checks})
}
