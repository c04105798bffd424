package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Sternrassler/lookup-get/pkg/logging"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "lookup.port").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field error found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError listing
// every invalid field, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateLookup(&cfg.Lookup)...)
	errs = append(errs, validateRetry(&cfg.Retry)...)
	errs = append(errs, validateTransport(&cfg.Transport)...)

	if cfg.Redis.TTL < 0 {
		errs = append(errs, FieldError{Field: "redis.ttl", Message: "must not be negative"})
	}
	if !logging.ValidLevel(logging.LogLevel(cfg.Logging.Level)) {
		errs = append(errs, FieldError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", cfg.Logging.Level)})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateLookup(c *LookupConfig) []FieldError {
	var errs []FieldError

	if c.URL == "" {
		errs = append(errs, FieldError{Field: "lookup.url", Message: "is required"})
	} else if u, err := url.Parse(c.URL); err != nil || u.Host == "" {
		errs = append(errs, FieldError{Field: "lookup.url", Message: fmt.Sprintf("invalid URL %q", c.URL)})
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, FieldError{Field: "lookup.port", Message: fmt.Sprintf("must be between 1 and 65535 (got %d)", c.Port)})
	}
	if c.Requests < 0 {
		errs = append(errs, FieldError{Field: "lookup.requests", Message: "must not be negative"})
	}
	if c.Limit < 1 {
		errs = append(errs, FieldError{Field: "lookup.limit", Message: fmt.Sprintf("must be positive (got %d)", c.Limit)})
	}
	switch c.Engine {
	case "workers", "dispatcher":
	default:
		errs = append(errs, FieldError{Field: "lookup.engine", Message: fmt.Sprintf("must be workers or dispatcher (got %q)", c.Engine)})
	}
	switch c.Admission {
	case "fast", "weighted":
	default:
		errs = append(errs, FieldError{Field: "lookup.admission", Message: fmt.Sprintf("must be fast or weighted (got %q)", c.Admission)})
	}

	return errs
}

func validateRetry(c *RetryConfig) []FieldError {
	var errs []FieldError

	if c.MaxAttempts != nil && *c.MaxAttempts < 0 {
		errs = append(errs, FieldError{Field: "retry.max_attempts", Message: "must not be negative (0 removes the cap)"})
	}
	if c.InitialBackoff < 0 {
		errs = append(errs, FieldError{Field: "retry.initial_backoff", Message: "must not be negative"})
	}
	if c.MaxBackoff < c.InitialBackoff {
		errs = append(errs, FieldError{Field: "retry.max_backoff", Message: "must not be less than initial_backoff"})
	}
	if c.BackoffMultiplier < 1 {
		errs = append(errs, FieldError{Field: "retry.backoff_multiplier", Message: "must be at least 1"})
	}

	return errs
}

func validateTransport(c *TransportConfig) []FieldError {
	var errs []FieldError

	if c.Timeout < 0 {
		errs = append(errs, FieldError{Field: "transport.timeout", Message: "must not be negative"})
	}
	if c.Rate < 0 {
		errs = append(errs, FieldError{Field: "transport.rate", Message: "must not be negative"})
	}
	if c.Burst < 1 {
		errs = append(errs, FieldError{Field: "transport.burst", Message: "must be positive"})
	}

	return errs
}
