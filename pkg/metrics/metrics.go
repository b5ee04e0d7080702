// Package metrics holds the prometheus collectors for reports, people,
// confirmations and event publishing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the bot and the dashboard API.
type Metrics struct {
	Registry *prometheus.Registry

	ReportsCreated       *prometheus.CounterVec
	PeopleCreated        *prometheus.CounterVec
	ConfirmationOutcomes *prometheus.CounterVec
	CommandErrors        *prometheus.CounterVec
	CommandDuration      *prometheus.HistogramVec
	PersistenceWarnings  prometheus.Counter
	EventsPublished      prometheus.Counter
	EventPublishFailures prometheus.Counter
	PendingConfirmations prometheus.Gauge
}

// New creates a Metrics instance registered on its own registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ReportsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_reports_created_total",
			Help: "Total number of reports created, by origin",
		}, []string{"source"}),
		PeopleCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_people_created_total",
			Help: "Total number of people created, by origin",
		}, []string{"source"}),
		ConfirmationOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_confirmations_total",
			Help: "Confirmation workflows by terminal state",
		}, []string{"state"}),
		CommandErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dossier_command_errors_total",
			Help: "Commands that ended in a user-facing error, by command and kind",
		}, []string{"command", "kind"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dossier_command_duration_seconds",
			Help:    "Duration of bot command handling, including confirmation waits",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
		}, []string{"command"}),
		PersistenceWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "dossier_persistence_warnings_total",
			Help: "Mutations applied in memory whose flush to storage failed",
		}),
		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "dossier_events_published_total",
			Help: "Report events delivered to the event stream",
		}),
		EventPublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "dossier_event_publish_failures_total",
			Help: "Report events the event stream rejected",
		}),
		PendingConfirmations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dossier_pending_confirmations",
			Help: "Confirmation prompts currently awaiting a response",
		}),
	}
}

// IncrementReportCreated records a committed report.
func (m *Metrics) IncrementReportCreated(source string, personCreated bool) {
	m.ReportsCreated.WithLabelValues(source).Inc()
	if personCreated {
		m.PeopleCreated.WithLabelValues(source).Inc()
	}
}

// RecordConfirmation records a confirmation workflow reaching state.
func (m *Metrics) RecordConfirmation(state string) {
	m.ConfirmationOutcomes.WithLabelValues(state).Inc()
}

// RecordCommandError records a command that failed with kind.
func (m *Metrics) RecordCommandError(command, kind string) {
	m.CommandErrors.WithLabelValues(command, kind).Inc()
}

// ObserveCommand records the duration of a command.
// Call with time.Now() at the start of the command.
func (m *Metrics) ObserveCommand(command string, start time.Time) {
	m.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

// RecordPublish records the result of one event publish attempt.
func (m *Metrics) RecordPublish(err error) {
	if err != nil {
		m.EventPublishFailures.Inc()
		return
	}
	m.EventsPublished.Inc()
}
