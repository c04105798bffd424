package lookup

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the package.
var (
	// ErrBatchUsed is returned when Run is called twice on the same Batch.
	ErrBatchUsed = errors.New("batch already run")

	// ErrInvalidConfig is wrapped by every ConfigError.
	ErrInvalidConfig = errors.New("invalid batch configuration")
)

// ErrorClass classifies the outcome of one transmission.
type ErrorClass string

const (
	// ErrorClassNone is a 200 response.
	ErrorClassNone ErrorClass = ""

	// ErrorClassRateLimit is a 429 response. Rolled back and retried.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassApplication is any other HTTP status. Terminal.
	ErrorClassApplication ErrorClass = "application"

	// ErrorClassTransport means no usable HTTP status was obtained. Terminal,
	// finalized exactly like an application error.
	ErrorClassTransport ErrorClass = "transport"
)

// Classify returns the class of a transmission outcome.
func Classify(status int, err error) ErrorClass {
	switch {
	case err != nil:
		return ErrorClassTransport
	case status == http.StatusOK:
		return ErrorClassNone
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	default:
		return ErrorClassApplication
	}
}

// Retriable reports whether the class leads to a rollback and requeue.
func (c ErrorClass) Retriable() bool {
	return c == ErrorClassRateLimit
}

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap implements error unwrapping for errors.Is.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
