package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for card programming. All helpers are
// nil-safe so the manager works without a registry wired in.
type Metrics struct {
	CardsProgrammed    prometheus.Counter
	ProgramFailures    prometheus.Counter
	CardsDeprovisioned prometheus.Counter
	ProgramDuration    prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		CardsProgrammed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardgate_cards_programmed_total",
			Help: "Total number of cards fully programmed",
		}),
		ProgramFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardgate_card_program_failures_total",
			Help: "Total number of card programming attempts that failed",
		}),
		CardsDeprovisioned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardgate_cards_deprovisioned_total",
			Help: "Total number of cards wiped",
		}),
		ProgramDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardgate_card_program_duration_seconds",
			Help:    "Duration of full card programming runs, including verification",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementProgrammed records a successful programming run.
func (m *Metrics) IncrementProgrammed() {
	if m == nil {
		return
	}
	m.CardsProgrammed.Inc()
}

// IncrementFailures records a failed programming run.
func (m *Metrics) IncrementFailures() {
	if m == nil {
		return
	}
	m.ProgramFailures.Inc()
}

// IncrementDeprovisioned records a card wipe.
func (m *Metrics) IncrementDeprovisioned() {
	if m == nil {
		return
	}
	m.CardsDeprovisioned.Inc()
}

// ObserveProgram records the duration of a programming run. Call with
// time.Now() captured at the start.
func (m *Metrics) ObserveProgram(start time.Time) {
	if m == nil {
		return
	}
	m.ProgramDuration.Observe(time.Since(start).Seconds())
}
