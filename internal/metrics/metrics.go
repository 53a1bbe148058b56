// Package metrics defines Prometheus metrics for papergraph.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "papergraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papergraph_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papergraph_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papergraph_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	LookupCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papergraph_lookup_calls_total",
			Help: "Calls to external metadata services by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	LookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "papergraph_lookup_duration_seconds",
			Help:    "External metadata lookup latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "papergraph_lookup_breaker_state",
			Help: "Circuit breaker state per lookup service (0 closed, 1 half-open, 2 open)",
		},
		[]string{"service"},
	)

	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papergraph_resolutions_total",
			Help: "Metadata resolutions by outcome and source",
		},
		[]string{"outcome", "source"},
	)

	TreeBuilds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papergraph_tag_tree_builds_total",
			Help: "Tag hierarchy builds",
		},
	)

	TreeDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papergraph_tag_tree_dropped_total",
			Help: "Tag records dropped while building the hierarchy, by reason",
		},
		[]string{"reason"},
	)

	TreeDuplicates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papergraph_tag_tree_duplicates_total",
			Help: "Duplicate tag paths seen while building the hierarchy",
		},
	)

	EnrichQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papergraph_enrich_queue_depth",
			Help: "Current metadata enrichment queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papergraph_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	NodeCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "papergraph_nodes",
			Help: "Node count by type at last snapshot",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, InFlight, ErrorsTotal,
		LookupCalls, LookupDuration, BreakerState,
		Resolutions, TreeBuilds, TreeDropped, TreeDuplicates,
		EnrichQueueDepth, WSConnections, NodeCount,
	)
}
