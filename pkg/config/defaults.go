package config

import "time"

// Default values for configuration fields.
const (
	// Lookup defaults
	DefaultURL       = "http://localhost/items/"
	DefaultPort      = 8080
	DefaultRequests  = 100
	DefaultLimit     = 5
	DefaultEngine    = "workers"
	DefaultAdmission = "fast"

	// Retry defaults
	DefaultMaxAttempts       = 10
	DefaultInitialBackoff    = 100 * time.Millisecond
	DefaultMaxBackoff        = 5 * time.Second
	DefaultBackoffMultiplier = 2.0

	// Transport defaults
	DefaultBurst = 1

	// Redis defaults
	DefaultRedisPrefix = "lookup"
	DefaultRedisTTL    = 24 * time.Hour

	// Logging defaults
	DefaultLogLevel = "info"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. The
// authorization token defaults to empty, and an explicit retry.max_attempts
// of 0 is kept.
func ApplyDefaults(cfg *Config) {
	if cfg.Lookup.URL == "" {
		cfg.Lookup.URL = DefaultURL
	}
	if cfg.Lookup.Port == 0 {
		cfg.Lookup.Port = DefaultPort
	}
	if cfg.Lookup.Requests == 0 {
		cfg.Lookup.Requests = DefaultRequests
	}
	if cfg.Lookup.Limit == 0 {
		cfg.Lookup.Limit = DefaultLimit
	}
	if cfg.Lookup.Engine == "" {
		cfg.Lookup.Engine = DefaultEngine
	}
	if cfg.Lookup.Admission == "" {
		cfg.Lookup.Admission = DefaultAdmission
	}

	if cfg.Retry.MaxAttempts == nil {
		n := DefaultMaxAttempts
		cfg.Retry.MaxAttempts = &n
	}
	if cfg.Retry.InitialBackoff == 0 {
		cfg.Retry.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.Retry.MaxBackoff == 0 {
		cfg.Retry.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.Retry.BackoffMultiplier == 0 {
		cfg.Retry.BackoffMultiplier = DefaultBackoffMultiplier
	}

	if cfg.Transport.Burst == 0 {
		cfg.Transport.Burst = DefaultBurst
	}

	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = DefaultRedisPrefix
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = DefaultRedisTTL
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
}
