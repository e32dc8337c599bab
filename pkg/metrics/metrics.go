package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
	OutboxEventsCleaned     prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec

	// Domain metrics
	AppointmentsSaved      *prometheus.CounterVec
	PointsEarned           prometheus.Counter
	PointsRedeemed         prometheus.Counter
	TierChanges            *prometheus.CounterVec
	ConcurrencyRetries     *prometheus.CounterVec
	RatingRefreshFailures  prometheus.Counter
	OfferRedemptions       *prometheus.CounterVec
	ChallengeParticipation prometheus.Counter

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequests        *prometheus.CounterVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them with reg.
// A nil reg leaves them unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OutboxEventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		OutboxEventsCleaned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_cleaned_total",
			Help:      "Total number of processed outbox events deleted by retention",
		}),

		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),

		AppointmentsSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "saved_total",
			Help:      "Appointments persisted, by operation",
		}, []string{"operation"}),
		PointsEarned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loyalty",
			Name:      "points_earned_total",
			Help:      "Loyalty points credited",
		}),
		PointsRedeemed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loyalty",
			Name:      "points_redeemed_total",
			Help:      "Loyalty points debited",
		}),
		TierChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loyalty",
			Name:      "tier_changes_total",
			Help:      "Tier changes, by resulting tier",
		}, []string{"tier"}),
		ConcurrencyRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concurrency_retries_total",
			Help:      "Versioned writes retried after losing a race",
		}, []string{"entity"}),
		RatingRefreshFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "social",
			Name:      "rating_refresh_failures_total",
			Help:      "Post rating aggregates that could not be refreshed",
		}),
		OfferRedemptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offers",
			Name:      "redemptions_total",
			Help:      "Offer redemption attempts, by outcome",
		}, []string{"outcome"}),
		ChallengeParticipation: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "challenges",
			Name:      "joins_total",
			Help:      "Participants added to challenges",
		}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total number of HTTP errors",
		}, []string{"method", "path", "type"}),
	}
}

// New builds an unregistered set, handy for tests and tools.
func New(namespace string) *Metrics {
	return NewMetrics(nil, namespace)
}
