package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream connection metrics
var (
	// UpstreamConnectsTotal tracks connection attempts by feed kind and result
	UpstreamConnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_connects_total",
			Help: "Upstream connection attempts by feed kind and result",
		},
		[]string{"feed", "result"},
	)

	// UpstreamOpenConnections tracks currently open upstream connections
	UpstreamOpenConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "upstream_open_connections",
			Help: "Currently open upstream connections by feed kind",
		},
		[]string{"feed"},
	)

	// UpstreamPingFailures tracks failed keepalive pings
	UpstreamPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "upstream_ping_failures_total",
			Help: "Total failed keepalive pings",
		},
	)

	// UpstreamMessagesTotal tracks inbound payloads by feed kind and decode status
	UpstreamMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_messages_total",
			Help: "Inbound upstream payloads by feed kind and decode status",
		},
		[]string{"feed", "status"},
	)

	// UpstreamSubscribesTotal tracks subscribe control frames relayed upstream
	UpstreamSubscribesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_subscribes_total",
			Help: "Subscribe control frames relayed upstream by feed kind",
		},
		[]string{"feed"},
	)
)

// Cache metrics
var (
	// CacheEntries tracks current cache size by feed kind
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_cache_entries",
			Help: "Current feed cache entries by feed kind",
		},
		[]string{"feed"},
	)

	// CacheEvictionsTotal tracks TTL evictions by feed kind
	CacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_evictions_total",
			Help: "Feed cache TTL evictions by feed kind",
		},
		[]string{"feed"},
	)
)

// Dispatcher metrics
var (
	// DispatcherActiveSessions tracks connected downstream consumers
	DispatcherActiveSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dispatcher_active_sessions",
			Help: "Connected downstream consumer sessions by feed kind",
		},
		[]string{"feed"},
	)

	// DispatcherFramesTotal tracks push frames emitted downstream
	DispatcherFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatcher_frames_total",
			Help: "Push frames emitted downstream by feed kind and frame type",
		},
		[]string{"feed", "type"},
	)

	// DispatcherTickDuration tracks per-session tick diff duration
	DispatcherTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatcher_tick_duration_seconds",
			Help:    "Per-session tick diff duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)
)
