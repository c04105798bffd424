// Package config loads the lookup client configuration.
//
// Configuration is read from an optional YAML file, completed with defaults
// and overridden by LOOKUP_* environment variables. Command-line flags are
// applied on top by the caller.
//
// Example file:
//
//	lookup:
//	  url: "http://localhost/items/"
//	  port: 8080
//	  authorization: "Y1JGMmR2RFpRc211MzdXR2dLNk1UY0w3WGpl"
//	  requests: 100
//	  limit: 5
//	  engine: dispatcher
//	retry:
//	  max_attempts: 0 # no cap
//	  initial_backoff: 100ms
//	redis:
//	  addr: "localhost:6379"
//	  ttl: 24h
package config

import (
	"time"

	"github.com/Sternrassler/lookup-get/pkg/lookup"
)

// Config is the root configuration.
type Config struct {
	Lookup    LookupConfig    `yaml:"lookup"`
	Retry     RetryConfig     `yaml:"retry"`
	Transport TransportConfig `yaml:"transport"`
	Redis     RedisConfig     `yaml:"redis"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// LookupConfig holds the batch parameters.
type LookupConfig struct {
	// URL is the base URL every identifier is appended to.
	URL string `yaml:"url"`

	// Port overrides the URL's port.
	Port int `yaml:"port"`

	// Authorization is sent verbatim in the Authorization header.
	Authorization string `yaml:"authorization"`

	// Requests is the number of identifiers to generate when no input is given.
	Requests int `yaml:"requests"`

	// Limit is the maximum number of concurrent requests.
	Limit int `yaml:"limit"`

	// Engine is "workers" or "dispatcher".
	Engine string `yaml:"engine"`

	// Admission is "fast" or "weighted".
	Admission string `yaml:"admission"`
}

// RetryConfig configures the dispatcher engine's retry policy.
type RetryConfig struct {
	// MaxAttempts caps transmissions per identifier. Unset means
	// DefaultMaxAttempts; 0 removes the cap.
	MaxAttempts       *int          `yaml:"max_attempts"`
	InitialBackoff    time.Duration `yaml:"initial_backoff"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// TransportConfig configures the HTTP transport.
type TransportConfig struct {
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`

	// Rate limits outgoing requests per second across all workers. Zero
	// disables the limiter.
	Rate float64 `yaml:"rate"`

	// Burst is the limiter burst size.
	Burst int `yaml:"burst"`
}

// RedisConfig configures the optional Redis export. Empty Addr disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Attempts returns the configured attempt cap, or DefaultMaxAttempts when
// unset.
func (c RetryConfig) Attempts() int {
	if c.MaxAttempts == nil {
		return DefaultMaxAttempts
	}
	return *c.MaxAttempts
}

// Batch returns the lookup configuration described by c. Transport, tracker
// and logger are left for the caller to set.
func (c *Config) Batch() lookup.Config {
	return lookup.Config{
		BaseURL:        c.Lookup.URL,
		Port:           c.Lookup.Port,
		Authorization:  c.Lookup.Authorization,
		MaxConcurrency: c.Lookup.Limit,
		Engine:         lookup.Engine(c.Lookup.Engine),
		Admission:      c.Lookup.Admission,
		Retry: lookup.RetryPolicy{
			MaxAttempts:       c.Retry.Attempts(),
			InitialBackoff:    c.Retry.InitialBackoff,
			MaxBackoff:        c.Retry.MaxBackoff,
			BackoffMultiplier: c.Retry.BackoffMultiplier,
		},
	}
}
