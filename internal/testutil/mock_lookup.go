// Package testutil provides testing utilities for the lookup client.
package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ItemBody is the body returned for every resolved identifier.
const ItemBody = `{"result":"Item is in inventory."}`

// DefaultMaxConcurrent is the number of simultaneous requests the mock server
// accepts before answering 429.
const DefaultMaxConcurrent = 5

// MockLookupResponse defines a fixed response for one identifier.
type MockLookupResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockLookup is a mock lookup service. It serves GET <route><id>, checks the
// Authorization header and answers 429 while more than MaxConcurrent requests
// are being processed.
type MockLookup struct {
	server *httptest.Server

	Route         string
	Authorization string
	MaxConcurrent int
	Delay         time.Duration

	mu        sync.RWMutex
	responses map[string]MockLookupResponse
	sequences map[string][]MockLookupResponse

	// Tracking
	active            int
	maxActive         int
	requestCount      int
	rateLimitedCount  int
	perID             map[string]int
	lastRequestHeader http.Header
}

// NewMockLookup creates a mock lookup server on "/items/" that requires
// authorization.
func NewMockLookup(authorization string) *MockLookup {
	mock := &MockLookup{
		Route:         "/items/",
		Authorization: authorization,
		MaxConcurrent: DefaultMaxConcurrent,
		responses:     make(map[string]MockLookupResponse),
		sequences:     make(map[string][]MockLookupResponse),
		perID:         make(map[string]int),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL without trailing slash.
func (m *MockLookup) URL() string {
	return m.server.URL
}

// BaseURL returns the URL every identifier is appended to.
func (m *MockLookup) BaseURL() string {
	return m.server.URL + m.Route
}

// Port returns the TCP port the server listens on.
func (m *MockLookup) Port() int {
	_, port, err := net.SplitHostPort(m.server.Listener.Addr().String())
	if err != nil {
		return 0
	}
	p, _ := strconv.Atoi(port)
	return p
}

// Close shuts down the mock server.
func (m *MockLookup) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockLookup) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.rateLimitedCount = 0
	m.maxActive = 0
	m.perID = make(map[string]int)
	m.lastRequestHeader = nil
}

// SetResponse fixes the response for one identifier.
func (m *MockLookup) SetResponse(id string, resp MockLookupResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[id] = resp
}

// SetSequence queues responses for one identifier, consumed one per request.
// Once exhausted the fixed or default response applies.
func (m *MockLookup) SetSequence(id string, resps ...MockLookupResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[id] = append(m.sequences[id], resps...)
}

// RequestCount returns the number of requests made to the server.
func (m *MockLookup) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// RateLimitedCount returns the number of requests answered with 429 because
// of the concurrency cap.
func (m *MockLookup) RateLimitedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rateLimitedCount
}

// RequestsFor returns the number of requests made for id.
func (m *MockLookup) RequestsFor(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.perID[id]
}

// MaxActive returns the highest number of simultaneously processed requests.
func (m *MockLookup) MaxActive() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxActive
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockLookup) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

func (m *MockLookup) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/json")

	if !strings.HasPrefix(r.URL.Path, m.Route) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, m.Route)

	m.mu.Lock()
	m.requestCount++
	m.perID[id]++
	m.lastRequestHeader = r.Header.Clone()

	if m.MaxConcurrent > 0 && m.active >= m.MaxConcurrent {
		m.rateLimitedCount++
		m.mu.Unlock()
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}
	m.active++
	if m.active > m.maxActive {
		m.maxActive = m.active
	}

	resp, scripted := m.nextResponse(id)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	if r.Header.Get("Authorization") != m.Authorization {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if scripted {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
		return
	}

	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(ItemBody))
}

// nextResponse must be called with mu held.
func (m *MockLookup) nextResponse(id string) (MockLookupResponse, bool) {
	if seq := m.sequences[id]; len(seq) > 0 {
		m.sequences[id] = seq[1:]
		return seq[0], true
	}
	resp, ok := m.responses[id]
	return resp, ok
}

// NewItemResponse creates a 200 OK response with body.
func NewItemResponse(body string) MockLookupResponse {
	return MockLookupResponse{
		StatusCode: http.StatusOK,
		Body:       body,
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockLookupResponse {
	return MockLookupResponse{StatusCode: http.StatusTooManyRequests}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockLookupResponse {
	return MockLookupResponse{StatusCode: http.StatusNotFound}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockLookupResponse {
	return MockLookupResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"Internal server error"}`,
	}
}
