// Package ratelimit tracks HTTP 429 responses from the lookup service.
// It counts rate-limited responses, parses the Retry-After header and
// classifies the current pressure so callers can decide how long to wait
// before requeueing an identifier.
package ratelimit

import (
	"time"
)

// Thresholds on consecutive 429 responses.
const (
	// ConsecutiveThresholdWarning marks sustained pressure. Callers that back
	// off should use at least the Retry-After hint from here on.
	ConsecutiveThresholdWarning = 5

	// ConsecutiveThresholdCritical marks a service that is rejecting nearly
	// everything. Logged at error level.
	ConsecutiveThresholdCritical = 50
)

// State is a snapshot of the rate-limit pressure observed so far.
type State struct {
	// Total is the number of 429 responses observed.
	Total int64 `json:"total"`

	// Consecutive is the number of 429 responses since the last non-429 status.
	Consecutive int64 `json:"consecutive"`

	// RetryAt is the latest instant announced by a Retry-After header.
	// Zero when no header has been seen.
	RetryAt time.Time `json:"retry_at"`

	// LastRateLimited is when the last 429 was observed.
	LastRateLimited time.Time `json:"last_rate_limited"`

	// IsHealthy is true while Consecutive is below ConsecutiveThresholdWarning.
	IsHealthy bool `json:"is_healthy"`
}

// NeedsThrottling reports sustained but not critical rate limiting.
func (s *State) NeedsThrottling() bool {
	return s.Consecutive >= ConsecutiveThresholdWarning && !s.NeedsCriticalAttention()
}

// NeedsCriticalAttention reports that the service rejects nearly all requests.
func (s *State) NeedsCriticalAttention() bool {
	return s.Consecutive >= ConsecutiveThresholdCritical
}

// TimeUntilRetry returns how long the server asked clients to wait.
// Returns 0 if no hint is pending.
func (s *State) TimeUntilRetry() time.Duration {
	if s.RetryAt.IsZero() {
		return 0
	}
	d := time.Until(s.RetryAt)
	if d < 0 {
		return 0
	}
	return d
}

// UpdateHealth updates IsHealthy from Consecutive.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.Consecutive < ConsecutiveThresholdWarning
}
