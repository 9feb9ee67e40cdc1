// Package metrics defines the prometheus instruments for the order pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for monitoring pipeline health and performance
var (
	OrderTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Total number of accepted order status transitions",
		},
		[]string{"to_status"},
	)

	OrderTransitionRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_transition_rejections_total",
			Help: "Total number of rejected order status transitions",
		},
	)

	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheInvalidationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_invalidations_total",
			Help: "Total number of cache invalidation calls",
		},
	)

	NotificationsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of events published per subscriber group",
		},
		[]string{"group"},
	)

	NotificationsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Total number of events dropped due to slow subscribers",
		},
	)

	WebhookDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Total number of webhook dispatch outcomes",
		},
		[]string{"outcome"},
	)

	WebhookDeliveryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webhook_delivery_duration_seconds",
			Help:    "Duration of webhook dispatches including retries",
			Buckets: prometheus.DefBuckets,
		},
	)

	LocationPushesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "location_pushes_total",
			Help: "Total number of delivery location updates accepted",
		},
	)

	LocationPushesThrottledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "location_pushes_throttled_total",
			Help: "Total number of delivery location samples suppressed by the throttle",
		},
	)
)

// Register registers all prometheus metrics with the default registry.
func Register() {
	prometheus.MustRegister(
		OrderTransitionsTotal,
		OrderTransitionRejectionsTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheInvalidationsTotal,
		NotificationsPublishedTotal,
		NotificationsDroppedTotal,
		WebhookDeliveriesTotal,
		WebhookDeliveryDuration,
		LocationPushesTotal,
		LocationPushesThrottledTotal,
	)
}
