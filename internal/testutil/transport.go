package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/Sternrassler/lookup-get/pkg/transport"
)

// Reply is what a StubTransport returns for one call.
type Reply struct {
	Status int
	Body   string
	Header http.Header
	Err    error
}

// StubTransport is an in-memory transport double. Respond decides the reply
// for the identifier (the request URL with the base stripped) and the
// 1-based attempt number for that identifier.
type StubTransport struct {
	Base    string
	Respond func(id string, attempt int) Reply

	// Gate, when set, is received from before every reply so tests can hold
	// calls in flight.
	Gate <-chan struct{}

	mu          sync.Mutex
	calls       map[string]int
	total       int
	inflight    int
	maxInflight int
	lastHeader  http.Header
	lastPort    int
}

// NewStubTransport creates a stub that strips base from request URLs.
func NewStubTransport(base string, respond func(id string, attempt int) Reply) *StubTransport {
	return &StubTransport{
		Base:    base,
		Respond: respond,
		calls:   make(map[string]int),
	}
}

// Factory returns a factory handing out per-worker handles that share this
// stub's counters.
func (s *StubTransport) Factory() transport.Factory {
	return func() transport.Transport {
		return s
	}
}

// Get implements transport.Transport.
func (s *StubTransport) Get(ctx context.Context, req transport.Request) (*transport.Response, error) {
	id := strings.TrimPrefix(req.URL+req.ID, s.Base)

	s.mu.Lock()
	s.calls[id]++
	attempt := s.calls[id]
	s.total++
	s.inflight++
	if s.inflight > s.maxInflight {
		s.maxInflight = s.inflight
	}
	s.lastHeader = req.Header.Clone()
	s.lastPort = req.Port
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	if s.Gate != nil {
		select {
		case <-s.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	reply := Reply{Status: http.StatusOK, Body: ItemBody}
	if s.Respond != nil {
		reply = s.Respond(id, attempt)
	}
	if reply.Err != nil {
		return nil, reply.Err
	}

	return &transport.Response{
		StatusCode: reply.Status,
		Body:       []byte(reply.Body),
		Header:     reply.Header,
	}, nil
}

// Calls returns the number of calls made for id.
func (s *StubTransport) Calls(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

// Total returns the total number of calls.
func (s *StubTransport) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// MaxInflight returns the highest number of concurrent calls observed.
func (s *StubTransport) MaxInflight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxInflight
}

// LastHeader returns the headers of the most recent call.
func (s *StubTransport) LastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeader
}

// LastPort returns the port of the most recent call.
func (s *StubTransport) LastPort() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPort
}
