package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts store activity for the /metrics endpoint.
type Metrics struct {
	Mutations       *prometheus.CounterVec
	PersistFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shopstock_mutations_total",
			Help: "Store mutations by activity type.",
		}, []string{"type"}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "shopstock_persist_failures_total",
			Help: "Collection writes that failed at the storage layer.",
		}),
	}
}
