package transport

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func serverPort(t *testing.T, server *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}
	return port
}

func TestWithPort(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		port    int
		want    string
		wantErr bool
	}{
		{
			name:   "zero port keeps url",
			rawURL: "http://localhost/items/abc",
			port:   0,
			want:   "http://localhost/items/abc",
		},
		{
			name:   "adds port",
			rawURL: "http://localhost/items/abc",
			port:   8080,
			want:   "http://localhost:8080/items/abc",
		},
		{
			name:   "replaces port",
			rawURL: "http://example.com:9999/items/abc",
			port:   3000,
			want:   "http://example.com:3000/items/abc",
		},
		{
			name:   "ipv6 host",
			rawURL: "http://[::1]/items/abc",
			port:   8080,
			want:   "http://[::1]:8080/items/abc",
		},
		{
			name:    "port out of range",
			rawURL:  "http://localhost/items/abc",
			port:    70000,
			wantErr: true,
		},
		{
			name:    "missing host",
			rawURL:  "/items/abc",
			port:    8080,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WithPort(tt.rawURL, tt.port)
			if (err != nil) != tt.wantErr {
				t.Fatalf("WithPort() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("WithPort() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPTransport_Get(t *testing.T) {
	var gotHeader http.Header
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"result":"Item is in inventory."}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport()
	header := http.Header{}
	header.Set("Accept", "text/json")
	header.Set("Authorization", "secret-token")

	resp, err := tr.Get(context.Background(), Request{
		URL:    "http://127.0.0.1:1/items/abc",
		Port:   serverPort(t, server),
		Header: header,
	})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != `{"result":"Item is in inventory."}` {
		t.Errorf("Body = %q", resp.Body)
	}
	if gotPath != "/items/abc" {
		t.Errorf("path = %q, want /items/abc", gotPath)
	}
	if got := gotHeader.Get("Accept"); got != "text/json" {
		t.Errorf("Accept = %q, want text/json", got)
	}
	if got := gotHeader.Get("Authorization"); got != "secret-token" {
		t.Errorf("Authorization = %q, want secret-token", got)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/json" {
		t.Errorf("response Content-Type = %q, want text/json", got)
	}
}

// rawServer answers every connection with 200 and reports the request line
// exactly as it arrived.
func rawServer(t *testing.T) (port int, lines <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	out := make(chan string, 16)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			r := bufio.NewReader(conn)
			line, _ := r.ReadString('\n')
			for {
				h, err := r.ReadString('\n')
				if err != nil || h == "\r\n" {
					break
				}
			}
			out <- strings.TrimRight(line, "\r\n")
			conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\nConnection: close\r\n\r\nok"))
			conn.Close()
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, out
}

func TestHTTPTransport_GetSendsIdentifierVerbatim(t *testing.T) {
	port, lines := rawServer(t)

	tests := []struct {
		id   string
		want string
	}{
		{id: "ok", want: "GET /items/ok HTTP/1.1"},
		{id: "100%", want: "GET /items/100% HTTP/1.1"},
		{id: "a%zz", want: "GET /items/a%zz HTTP/1.1"},
		{id: "a%2Fb", want: "GET /items/a%2Fb HTTP/1.1"},
		{id: "a b", want: "GET /items/a%20b HTTP/1.1"},
	}

	tr := NewHTTPTransport(WithTimeout(2 * time.Second))
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			resp, err := tr.Get(context.Background(), Request{
				URL:  "http://127.0.0.1/items/",
				ID:   tt.id,
				Port: port,
			})
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.id, err)
			}
			if resp.StatusCode != http.StatusOK || string(resp.Body) != "ok" {
				t.Errorf("Get(%q) = %d %q, want 200 ok", tt.id, resp.StatusCode, resp.Body)
			}

			select {
			case got := <-lines:
				if got != tt.want {
					t.Errorf("request line = %q, want %q", got, tt.want)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("server saw no request")
			}
		})
	}
}

func TestRequestTarget(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"abc", "abc"},
		{"100%", "100%"},
		{"a?b=c", "a?b=c"},
		{"tab\there", "tab%09here"},
		{"caf\u00e9", "caf%C3%A9"},
	}

	for _, tt := range tests {
		if got := requestTarget(tt.id); got != tt.want {
			t.Errorf("requestTarget(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestHTTPTransport_NonOKStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	resp, err := NewHTTPTransport().Get(context.Background(), Request{URL: server.URL + "/items/x"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", resp.StatusCode)
	}
	if len(resp.Body) != 0 {
		t.Errorf("Body = %q, want empty", resp.Body)
	}
}

func TestHTTPTransport_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL + "/items/x"
	server.Close()

	resp, err := NewHTTPTransport(WithTimeout(2*time.Second)).Get(context.Background(), Request{URL: target})
	if err == nil {
		t.Fatal("Get() against closed server returned nil error")
	}
	if resp != nil {
		t.Errorf("Get() response = %+v, want nil", resp)
	}
}

func TestHTTPTransport_PartialBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("response writer is not a hijacker")
			return
		}
		conn, buf, err := hj.Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		defer conn.Close()
		writeTruncated(buf)
	}))
	defer server.Close()

	tr := NewHTTPTransport(WithLogger(zerolog.Nop()))
	resp, err := tr.Get(context.Background(), Request{URL: server.URL + "/items/x"})
	if err != nil {
		t.Fatalf("Get() error = %v, want partial body without error", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != "partial" {
		t.Errorf("Body = %q, want %q", resp.Body, "partial")
	}
}

func writeTruncated(buf *bufio.ReadWriter) {
	buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: text/json\r\nContent-Length: 100\r\n\r\npartial")
	buf.Flush()
}

func TestHTTPTransport_LimiterHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// One token per hour with the burst already spent.
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPTransport(WithLimiter(limiter)).Get(ctx, Request{URL: server.URL + "/items/x"})
	if err == nil {
		t.Error("Get() with exhausted limiter returned nil error")
	}
}

func TestNewFactory_ReturnsDistinctTransports(t *testing.T) {
	factory := NewFactory(WithTimeout(time.Second))

	a, ok := factory().(*HTTPTransport)
	if !ok {
		t.Fatal("factory did not return *HTTPTransport")
	}
	b := factory().(*HTTPTransport)

	if a == b || a.client == b.client {
		t.Error("factory returned shared transport state")
	}
	if a.client.Transport == b.client.Transport {
		t.Error("factory returned shared connection pools")
	}
	if a.client.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", a.client.Timeout)
	}
}
