package lookup

import (
	"fmt"
	"net/http"

	"github.com/Sternrassler/lookup-get/pkg/ratelimit"
	"github.com/Sternrassler/lookup-get/pkg/semaphore"
	"github.com/Sternrassler/lookup-get/pkg/transport"
	"github.com/rs/zerolog"
)

// Engine selects how a batch schedules its workers.
type Engine string

const (
	// EngineWorkers runs self-scheduling workers that exit on an empty queue.
	EngineWorkers Engine = "workers"

	// EngineDispatcher runs a dispatcher feeding a parked worker pool.
	EngineDispatcher Engine = "dispatcher"
)

// Config holds the configuration of one batch.
type Config struct {
	// BaseURL is prefixed to every identifier, e.g. "http://localhost/items/".
	BaseURL string

	// Port is the TCP port every request is sent to (1-65535).
	Port int

	// Authorization is sent verbatim in the Authorization header.
	Authorization string

	// MaxConcurrency is both the worker count and the permit count.
	MaxConcurrency int

	// Engine defaults to EngineWorkers.
	Engine Engine

	// Admission names the admission semaphore: semaphore.KindFast (default)
	// or semaphore.KindWeighted.
	Admission string

	// Retry applies to EngineDispatcher only. Zero value means DefaultRetryPolicy.
	Retry RetryPolicy

	// Transport creates one transport per worker. Defaults to transport.NewFactory().
	Transport transport.Factory

	// Tracker observes every response status. Defaults to a new tracker.
	Tracker *ratelimit.Tracker

	// Logger defaults to the "lookup" component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns the configuration used by the lookup client when no
// overrides are given.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost/items/",
		Port:           8080,
		MaxConcurrency: 5,
		Engine:         EngineWorkers,
		Admission:      semaphore.KindFast,
		Retry:          DefaultRetryPolicy(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return &ConfigError{Field: "base_url", Message: "is required"}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ConfigError{Field: "port", Message: fmt.Sprintf("must be between 1 and 65535 (got %d)", c.Port)}
	}
	if c.MaxConcurrency < 1 {
		return &ConfigError{Field: "max_concurrency", Message: fmt.Sprintf("must be positive (got %d)", c.MaxConcurrency)}
	}
	switch c.Engine {
	case "", EngineWorkers, EngineDispatcher:
	default:
		return &ConfigError{Field: "engine", Message: fmt.Sprintf("unknown engine %q", c.Engine)}
	}
	switch c.Admission {
	case "", semaphore.KindFast, semaphore.KindWeighted:
	default:
		return &ConfigError{Field: "admission", Message: fmt.Sprintf("unknown admission semaphore %q", c.Admission)}
	}
	if c.Retry.MaxAttempts < 0 {
		return &ConfigError{Field: "retry.max_attempts", Message: "must not be negative"}
	}
	return nil
}

// withDefaults fills unset optional fields.
func (c Config) withDefaults(logger zerolog.Logger) Config {
	if c.Engine == "" {
		c.Engine = EngineWorkers
	}
	if c.Admission == "" {
		c.Admission = semaphore.KindFast
	}
	if c.Retry == (RetryPolicy{}) {
		c.Retry = DefaultRetryPolicy()
	}
	if c.Transport == nil {
		c.Transport = transport.NewFactory()
	}
	if c.Tracker == nil {
		c.Tracker = ratelimit.NewTracker(logger)
	}
	return c
}

// requestHeader returns the headers sent with every lookup.
func requestHeader(authorization string) http.Header {
	header := http.Header{}
	header.Set("Accept", "text/json")
	header.Set("Authorization", authorization)
	return header
}
