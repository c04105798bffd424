package sink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sinkWrites tracks payloads written by sink ("writer", "redis")
	sinkWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_sink_writes_total",
			Help: "Total number of result payloads written by sink",
		},
		[]string{"sink"},
	)

	// sinkErrors tracks sink operation errors
	sinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_sink_errors_total",
			Help: "Total number of sink operation errors",
		},
		[]string{"sink"},
	)
)
