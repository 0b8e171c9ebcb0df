package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gnezdo",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by source.",
		},
		[]string{"source"},
	)

	bookingDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gnezdo",
			Name:      "booking_deleted_total",
			Help:      "Count of bookings deleted by owners.",
		},
	)

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gnezdo",
			Name:      "booking_conflicts_total",
			Help:      "Count of booking attempts rejected by the overlap guard.",
		},
		[]string{"guard"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gnezdo",
			Name:      "availability_cache_lookups_total",
			Help:      "Availability cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	webhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gnezdo",
			Name:      "webhook_deliveries_total",
			Help:      "Webhook delivery attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated,
			bookingDeleted,
			bookingConflicts,
			cacheLookups,
			webhookDeliveries,
		)
	})
}

func IncBookingCreated(source string) {
	bookingCreated.WithLabelValues(source).Inc()
}

func IncBookingDeleted() {
	bookingDeleted.Inc()
}

// IncBookingConflict counts a rejected create. guard is "client" for the
// engine's fast-fail check, "store" for the database exclusion constraint.
func IncBookingConflict(guard string) {
	bookingConflicts.WithLabelValues(guard).Inc()
}

func IncCacheHit()  { cacheLookups.WithLabelValues("hit").Inc() }
func IncCacheMiss() { cacheLookups.WithLabelValues("miss").Inc() }

func IncWebhookDelivered() { webhookDeliveries.WithLabelValues("delivered").Inc() }
func IncWebhookFailed()    { webhookDeliveries.WithLabelValues("failed").Inc() }
func IncWebhookDropped()   { webhookDeliveries.WithLabelValues("dropped").Inc() }
