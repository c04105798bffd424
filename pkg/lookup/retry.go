package lookup

import (
	"math/rand"
	"time"
)

// RetryPolicy controls how the dispatcher engine requeues rate-limited
// identifiers. The workers engine ignores it and requeues immediately.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of transmissions per identifier,
	// including the first. Zero means unbounded.
	MaxAttempts int

	// InitialBackoff is the delay before the first requeue.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay.
	MaxBackoff time.Duration

	// BackoffMultiplier is the exponential growth factor.
	BackoffMultiplier float64
}

// DefaultRetryPolicy returns the default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       10,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Exhausted reports whether attempts transmissions use up the policy.
func (p RetryPolicy) Exhausted(attempts int) bool {
	return p.MaxAttempts > 0 && attempts >= p.MaxAttempts
}

// Backoff returns the jittered delay before retrying after the given attempt
// (1 for the first transmission). Jitter is ±20%.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if p.InitialBackoff <= 0 {
		return 0
	}

	multiplier := p.BackoffMultiplier
	if multiplier < 1 {
		multiplier = 1
	}

	backoff := float64(p.InitialBackoff)
	for i := 1; i < attempt; i++ {
		backoff *= multiplier
		if p.MaxBackoff > 0 && backoff > float64(p.MaxBackoff) {
			break
		}
	}
	if p.MaxBackoff > 0 && backoff > float64(p.MaxBackoff) {
		backoff = float64(p.MaxBackoff)
	}

	return time.Duration(backoff * (0.8 + rand.Float64()*0.4))
}
