package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/domain"
	"github.com/persistorai/papergraph/internal/middleware"
	"github.com/persistorai/papergraph/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log            *logrus.Logger
	Hub            *ws.Hub
	Graph          domain.GraphService
	Entries        domain.EntryService
	Metadata       domain.MetadataService
	Health         HealthDeps
	CORSOrigins    []string
	Version        string
	ResolveTimeout time.Duration
	HSTS           bool
}

// Router-level limits.
const (
	maxBodySize = 10 << 20 // 10 MB
	rateLimit   = 50       // requests per second per IP
	rateBurst   = 100      // token bucket burst size

	// Token costs for routes that fan out to lookup services or bulk writes.
	resolveCost = 10
	importCost  = 20
)

func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{HSTS: deps.HSTS}))
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).
		Exempt("/metrics", "/api/v1/health", "/api/v1/ready").
		Cost("/api/v1/metadata", resolveCost).
		Cost("/api/v1/entries/import", importCost).
		Handler())
	r.Use(middleware.PrometheusMiddleware("/metrics"))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Health, log, deps.Version)
	graph := NewGraphHandler(deps.Graph, log)
	meta := NewMetadataHandler(deps.Metadata, log)
	ent := NewEntryHandler(deps.Entries, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	api.GET("/graph", graph.Graph)
	api.GET("/tags/tree", graph.TagTree)
	api.GET("/nodes/:id", graph.Node)

	// Routes that may call external lookup services.
	resolving := api.Group("", middleware.RequestTimeout(deps.ResolveTimeout))
	resolving.GET("/nodes/:id/metadata", meta.NodeMetadata)
	resolving.GET("/metadata", meta.Resolve)

	api.POST("/entries", ent.Create)
	api.POST("/entries/import", ent.Import)

	api.POST("/admin/backfill-metadata", meta.Backfill)

	if deps.Hub != nil {
		api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
	}
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
