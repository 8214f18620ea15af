package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for order dispatch and the HTTP surface
var (
	DispatchEventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_events_published_total",
			Help: "Total number of topic events published, by change type",
		},
		[]string{"type"},
	)

	DispatchDeliveriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_deliveries_total",
			Help: "Total number of events handed to subscriber buffers",
		},
	)

	DispatchDeliveriesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_deliveries_dropped_total",
			Help: "Total number of events missed by subscribers with a full buffer",
		},
	)

	DispatchChangesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_changes_dropped_total",
			Help: "Total number of committed changes dropped because the notifier queue was full",
		},
	)

	DispatchSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_subscribers",
			Help: "Number of connected subscribers",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(DispatchEventsPublishedTotal)
	prometheus.MustRegister(DispatchDeliveriesTotal)
	prometheus.MustRegister(DispatchDeliveriesDroppedTotal)
	prometheus.MustRegister(DispatchChangesDroppedTotal)
	prometheus.MustRegister(DispatchSubscribers)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}
