package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the assignment and cascade paths.
type Metrics struct {
	AssignmentRuns        prometheus.Counter
	AssignmentTerritories *prometheus.CounterVec
	AssignmentDuration    prometheus.Histogram
	CascadeRuns           *prometheus.CounterVec
}

// New creates a Metrics instance with every metric registered on the default
// registry.
func New() *Metrics {
	return &Metrics{
		AssignmentRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lodestar_assignment_runs_total",
			Help: "Total number of assignment runs started",
		}),
		AssignmentTerritories: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lodestar_assignment_territories_total",
			Help: "Per-territory assignment outcomes by bucket",
		}, []string{"outcome"}),
		AssignmentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lodestar_assignment_run_duration_seconds",
			Help:    "Duration of full assignment runs",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		CascadeRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lodestar_cascade_runs_total",
			Help: "Hierarchy cascade executions by entity kind and result",
		}, []string{"entity", "result"}),
	}
}

// ObserveAssignmentRun records one finished assignment run.
// Call with time.Now() captured at the start of the run.
func (m *Metrics) ObserveAssignmentRun(start time.Time) {
	m.AssignmentDuration.Observe(time.Since(start).Seconds())
}

// CountTerritoryOutcome records one territory landing in a report bucket.
func (m *Metrics) CountTerritoryOutcome(outcome string) {
	m.AssignmentTerritories.WithLabelValues(outcome).Inc()
}

// CountCascade records one cascade attempt for an entity kind.
func (m *Metrics) CountCascade(entity string, result string) {
	m.CascadeRuns.WithLabelValues(entity, result).Inc()
}
