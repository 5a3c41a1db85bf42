// Package metrics defines Prometheus metrics for the kinship server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinship_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	RelationshipQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_relationship_queries_total",
			Help: "Relationship queries by resolved kind",
		},
		[]string{"kind"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinship_query_duration_seconds",
			Help:    "Inference engine query duration in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"op"},
	)

	PathFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kinship_path_fallbacks_total",
			Help: "Relationship queries answered by the path describer",
		},
	)

	SnapshotCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kinship_snapshot_cache_hits_total",
			Help: "Family snapshot cache hits",
		},
	)

	SnapshotCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kinship_snapshot_cache_misses_total",
			Help: "Family snapshot cache misses (snapshot loads)",
		},
	)

	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinship_audit_queue_depth",
			Help: "Current audit queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinship_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	DBPoolConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kinship_db_pool_connections",
			Help: "PostgreSQL pool connections by state, sampled on health checks",
		},
		[]string{"state"},
	)

	CachedPeople = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinship_snapshot_people",
			Help: "People held across all cached family snapshots",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		RelationshipQueries, QueryDuration, PathFallbacks,
		SnapshotCacheHits, SnapshotCacheMisses,
		AuditQueueDepth, WSConnections, DBPoolConnections, CachedPeople,
	)
}

// Handler serves the default registry for the dedicated metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
