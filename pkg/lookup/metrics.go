package lookup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for lookup batches.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lookup_requests_total",
		Help: "Total lookup requests by HTTP status (0 for transport failures)",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lookup_request_duration_seconds",
		Help:    "Lookup request duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lookup_errors_total",
		Help: "Total lookup errors by class",
	}, []string{"class"})

	rollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookup_rollbacks_total",
		Help: "Total reservations rolled back after a 429 response",
	})

	duplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookup_duplicates_skipped_total",
		Help: "Total queue entries skipped because the identifier was reserved or finalized",
	})

	inflightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lookup_inflight_requests",
		Help: "Number of lookup requests currently in flight",
	})

	retryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lookup_retry_backoff_seconds",
		Help:    "Delay before a rate-limited identifier is requeued by the dispatcher",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookup_retry_exhausted_total",
		Help: "Total identifiers finalized as rate limited after exhausting retry attempts",
	})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lookup_batches_total",
		Help: "Total batches run by engine",
	}, []string{"engine"})

	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lookup_batch_duration_seconds",
		Help:    "Batch wall-clock duration in seconds by engine",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"engine"})
)
