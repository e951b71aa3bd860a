package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the attendance domain.
type Metrics struct {
	EventsRecorded      *prometheus.CounterVec
	TransitionsRejected *prometheus.CounterVec
	ReportsGenerated    prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all attendance metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_events_recorded_total",
			Help: "Accepted attendance events by kind",
		}, []string{"kind"}),
		TransitionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_transitions_rejected_total",
			Help: "Punches refused by the state machine, by requested kind",
		}, []string{"requested"}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attendance_reports_generated_total",
			Help: "Ledger reports generated",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) IncEventRecorded(kind string) {
	if m == nil {
		return
	}
	m.EventsRecorded.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncTransitionRejected(requested string) {
	if m == nil {
		return
	}
	m.TransitionsRejected.WithLabelValues(requested).Inc()
}

func (m *Metrics) IncReportGenerated() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}
