package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the sync pipeline

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footysync_api_calls_total",
			Help: "Total number of external API calls",
		},
		[]string{"source", "endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footysync_api_call_duration_seconds",
			Help:    "Duration of external API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "endpoint"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footysync_rate_limited_total",
			Help: "Requests rejected by the local rate limiter",
		},
		[]string{"source"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footysync_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"source"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footysync_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"source"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footysync_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footysync_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"type"},
	)

	RecordsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footysync_records_synced_total",
			Help: "Records processed by sync batches",
		},
		[]string{"type", "outcome"},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footysync_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footysync_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordAPICall records an external API call
func RecordAPICall(source, endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(source, endpoint, status).Inc()
	APICallDuration.WithLabelValues(source, endpoint).Observe(duration)
}

// RecordRateLimited records a request rejected by the local limiter
func RecordRateLimited(source string) {
	RateLimited.WithLabelValues(source).Inc()
}

// RecordCacheHit records a response cache hit
func RecordCacheHit(source string) {
	CacheHitsTotal.WithLabelValues(source).Inc()
}

// RecordCacheMiss records a response cache miss
func RecordCacheMiss(source string) {
	CacheMissesTotal.WithLabelValues(source).Inc()
}

// RecordSync records a completed sync batch
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordSyncOutcome records per-record outcomes within a batch
func RecordSyncOutcome(syncType, outcome string, count int) {
	if count > 0 {
		RecordsSynced.WithLabelValues(syncType, outcome).Add(float64(count))
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
