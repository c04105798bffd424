package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

var testCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "lookup_metrics_test_total",
	Help: "Counter used by the metrics package tests",
})

func TestRegistry(t *testing.T) {
	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
	if Gatherer != prometheus.DefaultGatherer {
		t.Error("Gatherer should be the default Prometheus gatherer")
	}
}

func TestHandler(t *testing.T) {
	testCounter.Inc()
	if got := testutil.ToFloat64(testCounter); got < 1 {
		t.Fatalf("counter = %v, want >= 1", got)
	}

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "lookup_metrics_test_total") {
		t.Error("metrics output missing lookup_metrics_test_total")
	}
}

func TestStart(t *testing.T) {
	s, err := Start("127.0.0.1:0", zerolog.Nop())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Shutdown(context.Background())

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "lookup_metrics_test_total") {
		t.Error("served metrics missing lookup_metrics_test_total")
	}
}

func TestStart_InvalidAddr(t *testing.T) {
	if _, err := Start("invalid-address", zerolog.Nop()); err == nil {
		t.Error("Start() with invalid address should fail")
	}
}
