package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transit_catalog",
		Subsystem: "reconcile",
		Name:      "records_total",
		Help:      "Catalog rows matched, created or retired by committed runs.",
	}, []string{"entity", "outcome"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transit_catalog",
		Subsystem: "reconcile",
		Name:      "runs_total",
		Help:      "Reconcile runs by final state.",
	}, []string{"entity", "state"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "transit_catalog",
		Subsystem: "reconcile",
		Name:      "commit_duration_seconds",
		Help:      "Duration of the commit transaction.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"entity"})
)

func observeCommitted(entity string, s Summary) {
	recordsTotal.WithLabelValues(entity, "matched").Add(float64(s.Matched))
	recordsTotal.WithLabelValues(entity, "created").Add(float64(s.Created))
	recordsTotal.WithLabelValues(entity, "retired").Add(float64(s.Retired))
}
