package watch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buzzwatch_cycles_total",
		Help: "Total poll cycles attempted.",
	})

	fetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buzzwatch_fetch_failures_total",
		Help: "Cycles skipped because the buzz index fetch failed.",
	})

	conditionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buzzwatch_conditions_total",
		Help: "Candidate alert conditions emitted by the evaluator.",
	}, []string{"kind"})

	approvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buzzwatch_alerts_approved_total",
		Help: "Conditions approved by the governor after flood control.",
	})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buzzwatch_delivery_batches_total",
		Help: "Delivery batches by final outcome.",
	}, []string{"outcome"})

	playersTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "buzzwatch_players_tracked",
		Help: "Distinct players with snapshot history this process lifetime.",
	})
)
