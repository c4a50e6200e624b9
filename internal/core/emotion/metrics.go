package emotion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "persona_emotion_classifications_total",
	Help: "Per-record emotion classifications by outcome",
}, []string{"outcome"})
