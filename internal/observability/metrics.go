// README: Prometheus collectors for rides, realtime connections, and HTTP.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreated = promauto.NewCounter(prometheus.CounterOpts{Namespace: "swiftcab", Name: "rides_created_total", Help: "Total rides created"})
	RideTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "swiftcab", Name: "ride_transitions_total", Help: "Ride status transitions by target state"},
		[]string{"to"},
	)
	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "swiftcab", Name: "realtime_connections", Help: "Live websocket connections"})
	RealtimeDropped     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "swiftcab", Name: "realtime_dropped_total", Help: "Events dropped because the recipient had no live connection"})
	LocationUpdates     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "swiftcab", Name: "location_updates_total", Help: "Captain location updates ingested"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "swiftcab", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "swiftcab",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
