// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"

	// LevelDisabled turns logging off.
	LevelDisabled LogLevel = "disabled"
)

// Component names used with NewLogger.
const (
	ComponentLookup    = "lookup"
	ComponentTransport = "transport"
	ComponentRateLimit = "ratelimit"
	ComponentSink      = "sink"
	ComponentMetrics   = "metrics"
	ComponentCLI       = "lookup-client"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr). Payloads
	// go to stdout, so diagnostics must not.
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339Nano}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level. Unknown levels log at Info.
func parseLevel(level LogLevel) zerolog.Level {
	if l, ok := lookupLevel(level); ok {
		return l
	}
	return zerolog.InfoLevel
}

// ValidLevel reports whether level names a level Setup understands.
func ValidLevel(level LogLevel) bool {
	_, ok := lookupLevel(level)
	return ok
}

func lookupLevel(level LogLevel) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.NoLevel, false
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Per-identifier outcomes (status, duration)
//   - Worker start/exit, duplicate skips
//   - Dispatcher retry scheduling (attempt, backoff)
//
// Info: Normal operation events
//   - Batch start and completion summaries
//   - Redis export, metrics server startup
//
// Warn: Warning conditions that don't prevent operation
//   - Transport failures (finalized with status 0)
//   - Sustained 429 responses
//   - Truncated response bodies
//   - Batch completed with unresolved identifiers, cancellation
//   - Retry attempts exhausted
//
// Error: Error conditions requiring attention
//   - Critical rate limit pressure
//   - Sink failures
//   - Configuration errors
//
// Context Fields:
//   - id: Identifier being looked up
//   - worker_id: Worker index
//   - status: HTTP status code (0 when none was obtained)
//   - error_class: Error classification (rate_limit, application, transport)
//   - attempt: Transmission count for the identifier
//   - backoff: Delay before a retry
//   - duration: Request or batch duration
//   - batch_id: Batch identifier used by sinks
