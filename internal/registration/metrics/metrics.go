package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for registration attempts.
const (
	OutcomeCreated      = "created"
	OutcomeMissing      = "missing_fields"
	OutcomeInvalidEmail = "invalid_email"
	OutcomeDuplicate    = "duplicate_email"
	OutcomeError        = "storage_error"
)

// Metrics provides observability for the registration module.
type Metrics struct {
	Registrations  *prometheus.CounterVec
	InsertDuration prometheus.Histogram
	QueryDuration  *prometheus.HistogramVec
}

// New registers the registration metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regform_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		InsertDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "regform_store_insert_duration_seconds",
			Help:    "Duration of record store inserts",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regform_store_query_duration_seconds",
			Help:    "Duration of record store reads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"query"}),
	}
}

// IncRegistration counts one attempt with the given outcome. Nil-safe.
func (m *Metrics) IncRegistration(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

// ObserveInsert records the duration of an insert started at start.
func (m *Metrics) ObserveInsert(start time.Time) {
	if m == nil {
		return
	}
	m.InsertDuration.Observe(time.Since(start).Seconds())
}

// ObserveQuery records the duration of a list or count read.
func (m *Metrics) ObserveQuery(query string, start time.Time) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}
