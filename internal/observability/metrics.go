// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engage_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engage_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// GenerationsTotal counts generation requests by outcome
	// (ok, insufficient_tokens, rejected, error).
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engage_generations_total",
		Help: "Total generation requests by outcome",
	}, []string{"outcome"})

	// FallbackSubstitutions counts suggestion slots served from the static
	// persona bank, by reason (error, degenerate).
	FallbackSubstitutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engage_fallback_substitutions_total",
		Help: "Suggestion slots substituted with persona fallbacks, by reason",
	}, []string{"reason"})

	// TokensConsumed counts tokens deducted from user ledgers.
	TokensConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engage_tokens_consumed_total",
		Help: "Total generation tokens consumed",
	})

	// GenerationLatency records end-to-end suggestion batch latency.
	GenerationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "engage_generation_latency_seconds",
		Help:    "Suggestion batch generation latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
