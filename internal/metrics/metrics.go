// Package metrics exposes Prometheus instruments for the import service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes used as the "outcome" label.
const (
	OutcomeSucceeded = "succeeded" // Run produced a result and was retained
	OutcomeRejected  = "rejected"  // Bad input: malformed line, empty or oversized body
	OutcomeFailed    = "failed"    // Server-side failure: limiter timeout, persistence
)

// Metrics holds every instrument registered for one server.
type Metrics struct {
	Imports        *prometheus.CounterVec
	ImportDuration prometheus.Histogram
	PeopleParsed   prometheus.Counter
	LinesFailed    prometheus.Counter
}

// New registers the instruments on reg. active reports the number of
// imports currently holding a limiter slot.
func New(reg prometheus.Registerer, active func() int) *Metrics {
	factory := promauto.With(reg)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "roster_imports_active",
		Help: "Imports currently being parsed",
	}, func() float64 { return float64(active()) })

	return &Metrics{
		Imports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_imports_total",
			Help: "Import requests by outcome",
		}, []string{"outcome"}),

		ImportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_import_duration_seconds",
			Help:    "Time spent parsing an import body",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		PeopleParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "roster_people_parsed_total",
			Help: "Person records built across all imports",
		}),

		LinesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "roster_lines_failed_total",
			Help: "Lines collected as failures under the collect policy",
		}),
	}
}

// ObserveImport records a finished run.
func (m *Metrics) ObserveImport(d time.Duration, people, failed int) {
	if m == nil {
		return
	}
	m.Imports.WithLabelValues(OutcomeSucceeded).Inc()
	m.ImportDuration.Observe(d.Seconds())
	m.PeopleParsed.Add(float64(people))
	m.LinesFailed.Add(float64(failed))
}

// IncrementOutcome counts an import that ended without a run.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.Imports.WithLabelValues(outcome).Inc()
	}
}
