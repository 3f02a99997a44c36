// Package metrics exports Prometheus metrics for the rostering engine.
// Unlike a package-level promauto registration, Recorder takes its own
// prometheus.Registerer so independent multi-start runs (spec §5) don't
// collide on the default registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder holds the gauges/counters emitted by the search.
type Recorder struct {
	DriversTotal        prometheus.Gauge
	LNSIterationsTotal  prometheus.Counter
	LNSOperatorTotal    *prometheus.CounterVec
	ConflictAvgSetSize  prometheus.Gauge
}

// NewRecorder registers and returns a Recorder against reg. Pass
// prometheus.NewRegistry() for an isolated registry (e.g. per multi-start
// run) or prometheus.DefaultRegisterer for a process-wide one.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		DriversTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roster_drivers_total",
			Help: "Current number of drivers in the best-so-far solution.",
		}),
		LNSIterationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roster_lns_iterations_total",
			Help: "Total LNS/ALNS iterations executed.",
		}),
		LNSOperatorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_lns_operator_total",
			Help: "LNS operator attempts by operator and result.",
		}, []string{"op", "result"}),
		ConflictAvgSetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roster_conflict_avg_set_size",
			Help: "Average conflict-set cardinality from the last build.",
		}),
	}
	reg.MustRegister(r.DriversTotal, r.LNSIterationsTotal, r.LNSOperatorTotal, r.ConflictAvgSetSize)
	return r
}
