package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fragmentsIndexed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persona_fragments_indexed_total",
		Help: "Fragments written to the vector index by kind",
	}, []string{"kind"})

	indexDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "persona_index_duration_seconds",
		Help:    "Wall time of indexing one persona",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)
