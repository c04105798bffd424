// Package metrics exposes the Prometheus metrics of the lookup client.
// All metrics are defined in their respective packages (lookup, ratelimit,
// sink) with promauto and registered with the default registry.
//
// This package serves them and documents the catalogue.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Registry is the registerer all lookup metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler returns an HTTP handler exposing all registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Server serves /metrics until shut down.
type Server struct {
	srv      *http.Server
	listener net.Listener
	logger   zerolog.Logger
}

// Start listens on addr and serves /metrics in the background.
func Start(addr string, logger zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	s := &Server{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: ln,
		logger:   logger,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	logger.Info().Str("addr", ln.Addr().String()).Msg("Metrics server listening")
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Metrics Documentation
//
// Request Metrics (pkg/lookup):
//   - lookup_requests_total{status} (Counter): Transmissions by HTTP status (0 = transport failure)
//   - lookup_request_duration_seconds (Histogram): Transmission duration
//   - lookup_errors_total{class} (Counter): Errors by class (rate_limit, application, transport)
//   - lookup_inflight_requests (Gauge): Transmissions in flight
//
// Reservation Metrics (pkg/lookup):
//   - lookup_rollbacks_total (Counter): Reservations rolled back after a 429
//   - lookup_duplicates_skipped_total (Counter): Queue entries skipped as already reserved or finalized
//
// Retry Metrics (pkg/lookup, dispatcher engine):
//   - lookup_retry_backoff_seconds (Histogram): Delay before a rate-limited identifier is requeued
//   - lookup_retry_exhausted_total (Counter): Identifiers finalized as 429 after MaxAttempts
//
// Batch Metrics (pkg/lookup):
//   - lookup_batches_total{engine} (Counter): Batches run
//   - lookup_batch_duration_seconds{engine} (Histogram): Batch wall-clock duration
//
// Rate Limit Metrics (pkg/ratelimit):
//   - lookup_rate_limited_total (Counter): 429 responses
//   - lookup_rate_limit_consecutive (Gauge): Consecutive 429 responses
//   - lookup_retry_after_seconds (Histogram): Retry-After hints
//
// Sink Metrics (pkg/sink):
//   - lookup_sink_writes_total{sink} (Counter): Payloads written
//   - lookup_sink_errors_total{sink} (Counter): Sink errors
//
// Example Prometheus Queries:
//
//   # Rate limited share of transmissions
//   rate(lookup_requests_total{status="429"}[5m]) / sum(rate(lookup_requests_total[5m]))
//
//   # Duplicate hit rate
//   rate(lookup_duplicates_skipped_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(lookup_request_duration_seconds_bucket[5m]))
