package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookup_rate_limited_total",
		Help: "Total number of 429 responses received from the lookup service",
	})

	rateLimitConsecutive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lookup_rate_limit_consecutive",
		Help: "Number of consecutive 429 responses since the last other status",
	})

	retryAfterSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lookup_retry_after_seconds",
		Help:    "Retry-After hints sent with 429 responses",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)

// Tracker observes response statuses and keeps the rate-limit State.
// It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	state  State
	logger zerolog.Logger
	now    func() time.Time
}

// NewTracker creates a new rate limit tracker.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		state:  State{IsHealthy: true},
		logger: logger,
		now:    time.Now,
	}
}

// Observe records one response. Non-429 statuses reset the consecutive count.
func (t *Tracker) Observe(status int, header http.Header) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if status != http.StatusTooManyRequests {
		if t.state.Consecutive > 0 {
			t.logger.Debug().
				Int64("consecutive", t.state.Consecutive).
				Int("status", status).
				Msg("Rate limit pressure cleared")
		}
		t.state.Consecutive = 0
		t.state.UpdateHealth()
		rateLimitConsecutive.Set(0)
		return
	}

	now := t.now()
	t.state.Total++
	t.state.Consecutive++
	t.state.LastRateLimited = now
	rateLimitedTotal.Inc()
	rateLimitConsecutive.Set(float64(t.state.Consecutive))

	if d, ok := ParseRetryAfter(header.Get("Retry-After"), now); ok {
		retryAfterSeconds.Observe(d.Seconds())
		if at := now.Add(d); at.After(t.state.RetryAt) {
			t.state.RetryAt = at
		}
	}

	wasHealthy := t.state.IsHealthy
	t.state.UpdateHealth()

	switch {
	case t.state.Consecutive == ConsecutiveThresholdCritical:
		t.logger.Error().
			Int64("consecutive", t.state.Consecutive).
			Int64("total", t.state.Total).
			Msg("Lookup service rate limit CRITICAL - nearly all requests rejected")
	case wasHealthy && t.state.NeedsThrottling():
		t.logger.Warn().
			Int64("consecutive", t.state.Consecutive).
			Int64("total", t.state.Total).
			Msg("Lookup service rate limit WARNING - sustained 429 responses")
	default:
		t.logger.Debug().
			Int64("consecutive", t.state.Consecutive).
			Msg("Rate limited response observed")
	}
}

// State returns a snapshot of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// RetryDelay returns fallback, or the remaining Retry-After wait if longer.
func (t *Tracker) RetryDelay(fallback time.Duration) time.Duration {
	state := t.State()
	if d := state.TimeUntilRetry(); d > fallback {
		return d
	}
	return fallback
}

// ParseRetryAfter parses a Retry-After value given as delta-seconds or as an
// HTTP date relative to now.
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}

	at, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	d := at.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}
