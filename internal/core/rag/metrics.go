package rag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persona_queries_total",
		Help: "Persona queries by outcome",
	}, []string{"outcome"})

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "persona_query_duration_seconds",
		Help:    "Wall time of answering one persona query",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)
