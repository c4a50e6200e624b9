package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persona_capability_calls_total",
		Help: "External capability calls by capability and outcome",
	}, []string{"capability", "outcome"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persona_capability_retries_total",
		Help: "Retried attempts of external capability calls",
	}, []string{"capability"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "persona_capability_call_duration_seconds",
		Help:    "Wall time of external capability calls including retries",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"capability"})
)
