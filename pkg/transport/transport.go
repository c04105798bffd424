// Package transport performs the single HTTP GET a lookup worker needs.
//
// Each worker owns its own Transport for its whole lifetime, so
// implementations do not have to be safe for concurrent use.
package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/lookup-get/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Request describes one lookup GET.
type Request struct {
	// URL is the base URL, e.g. "http://localhost/items/".
	URL string

	// ID is appended to the path of URL without being parsed or unescaped,
	// so identifiers such as "100%" reach the server as written.
	ID string

	// Port overrides the port of URL when non-zero.
	Port int

	// Header is sent verbatim.
	Header http.Header
}

// Response is what came back from the server.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Transport performs one GET. A non-nil error means no usable HTTP status was
// obtained (connection refused, DNS failure, malformed URL, cancelled context).
type Transport interface {
	Get(ctx context.Context, req Request) (*Response, error)
}

// Factory creates a fresh Transport for one worker.
type Factory func() Transport

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithTimeout sets the overall per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) {
		t.client.Timeout = d
	}
}

// WithLimiter paces requests through a rate limiter. The limiter may be shared
// between the transports of one batch.
func WithLimiter(l *rate.Limiter) Option {
	return func(t *HTTPTransport) {
		t.limiter = l
	}
}

// WithLogger sets the logger used for body read failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// WithHTTPClient replaces the underlying client (for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

// HTTPTransport is a Transport backed by its own http.Client and connection pool.
type HTTPTransport struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewHTTPTransport creates an HTTPTransport with a private connection pool.
func NewHTTPTransport(opts ...Option) *HTTPTransport {
	base, _ := http.DefaultTransport.(*http.Transport)
	rt := http.RoundTripper(http.DefaultTransport)
	if base != nil {
		rt = base.Clone()
	}

	t := &HTTPTransport{
		client: &http.Client{Transport: rt},
		logger: logging.NewLogger(logging.ComponentTransport),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewFactory returns a Factory producing HTTPTransports configured with opts.
func NewFactory(opts ...Option) Factory {
	return func() Transport {
		return NewHTTPTransport(opts...)
	}
}

// Get performs the request. A failure while reading the body is logged and
// the partial body is returned together with the status; it is not an error.
func (t *HTTPTransport) Get(ctx context.Context, req Request) (*Response, error) {
	base, err := WithPort(req.URL, req.Port)
	if err != nil {
		return nil, err
	}
	target := base + req.ID

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if req.ID != "" {
		httpReq.URL.Opaque = requestPath(httpReq.URL) + requestTarget(req.ID)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.logger.Warn().
			Err(err).
			Str("url", target).
			Int("status", resp.StatusCode).
			Int("bytes_read", len(body)).
			Msg("Failed to read response body, keeping partial body")
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header.Clone(),
	}, nil
}

// requestPath returns the escaped path of the base URL, always rooted.
func requestPath(u *url.URL) string {
	p := u.EscapedPath()
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// requestTarget returns id byte for byte, percent-encoding only the bytes
// that cannot appear in an HTTP request line (controls, space, non-ASCII).
func requestTarget(id string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c <= ' ' || c >= 0x7f {
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// WithPort returns rawURL with its port replaced by port. A zero port leaves
// the URL untouched.
func WithPort(rawURL string, port int) (string, error) {
	if port == 0 {
		return rawURL, nil
	}
	if port < 0 || port > 65535 {
		return "", fmt.Errorf("port %d out of range", port)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	return u.String(), nil
}
