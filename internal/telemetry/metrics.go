package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SnapshotsProduced counts snapshots handed out by the observation feed
	SnapshotsProduced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "widsview",
			Name:      "snapshots_produced_total",
			Help:      "Total number of snapshots produced by the observation feed",
		},
	)

	// AlertsRetained counts alerts that survived the per-snapshot draw
	AlertsRetained = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "widsview",
			Name:      "alerts_retained_total",
			Help:      "Total number of alerts present in produced snapshots",
		},
		[]string{"type"},
	)

	// FeedFailures counts ticks where the producer failed and the view went stale
	FeedFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "widsview",
			Name:      "feed_failures_total",
			Help:      "Total number of failed snapshot productions",
		},
	)

	// PointerEvents counts interactions reported by the rendering substrate
	PointerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "widsview",
			Name:      "pointer_events_total",
			Help:      "Total number of pointer events handled by the scene presenter",
		},
		[]string{"kind"},
	)

	// TopologyEdges is the edge count of the last built topology
	TopologyEdges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "widsview",
			Name:      "topology_edges",
			Help:      "Number of same-channel edges in the current topology",
		},
	)

	// WSClients is the number of connected websocket substrates
	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "widsview",
			Name:      "ws_clients",
			Help:      "Number of connected websocket clients",
		},
	)

	// LoginAttempts counts gate decisions
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "widsview",
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts at the authentication gate",
		},
		[]string{"result"},
	)

	// VendorCacheLookups counts vendor cache answers by outcome
	VendorCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "widsview",
			Name:      "vendor_cache_lookups_total",
			Help:      "Total number of vendor cache lookups",
		},
		[]string{"result"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		// Ignore AlreadyRegistered errors so tests can bootstrap repeatedly
		prometheus.DefaultRegisterer.Register(SnapshotsProduced)
		prometheus.DefaultRegisterer.Register(AlertsRetained)
		prometheus.DefaultRegisterer.Register(FeedFailures)
		prometheus.DefaultRegisterer.Register(PointerEvents)
		prometheus.DefaultRegisterer.Register(TopologyEdges)
		prometheus.DefaultRegisterer.Register(WSClients)
		prometheus.DefaultRegisterer.Register(LoginAttempts)
		prometheus.DefaultRegisterer.Register(VendorCacheLookups)
	})
}
