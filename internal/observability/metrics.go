package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions     prometheus.Gauge
	SessionEvents      *prometheus.CounterVec
	Turns              *prometheus.CounterVec
	Intents            *prometheus.CounterVec
	CollaboratorErrors *prometheus.CounterVec
	LeadSubmissions    *prometheus.CounterVec
	StorageFailures    prometheus.Counter
	WSMessages         *prometheus.CounterVec
	StageLatency       *prometheus.HistogramVec

	stages *stageWindow
}

// NewMetrics registers the instruments on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry registers on reg; tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of open chat sessions.",
		}),
		SessionEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session lifecycle events by type.",
		}, []string{"event"}),
		Turns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns appended by speaker.",
		}, []string{"speaker"}),
		Intents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Classified visitor utterances by intent.",
		}, []string{"intent"}),
		CollaboratorErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "External collaborator failures by collaborator and reason.",
		}, []string{"collaborator", "reason"}),
		LeadSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_submissions_total",
			Help:      "Lead form submissions by outcome.",
		}, []string{"outcome"}),
		StorageFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_write_failures_total",
			Help:      "Failed or dropped durable session storage writes.",
		}),
		WSMessages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		StageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_ms",
			Help:      "Turn stage latency in milliseconds.",
			Buckets:   []float64{5, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"stage"}),
		stages: newStageWindow(256),
	}
}

// ObserveStage records d for stage in both the histogram and the rolling
// window served at /v1/perf/latency.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	ms := float64(d.Microseconds()) / 1000
	m.StageLatency.WithLabelValues(stage).Observe(ms)
	m.stages.Observe(stage, ms)
}

func (m *Metrics) ObserveIndicator(name string) {
	if m == nil {
		return
	}
	m.stages.ObserveIndicator(name)
}

func (m *Metrics) SnapshotStages() StageSnapshot {
	if m == nil {
		return StageSnapshot{GeneratedAt: time.Now().UTC()}
	}
	return m.stages.Snapshot()
}

func (m *Metrics) CollaboratorError(collaborator, reason string) {
	if m == nil {
		return
	}
	m.CollaboratorErrors.WithLabelValues(collaborator, reason).Inc()
}

func (m *Metrics) SessionEvent(event string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) Turn(speaker string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(speaker).Inc()
}

func (m *Metrics) Intent(label string) {
	if m == nil {
		return
	}
	m.Intents.WithLabelValues(label).Inc()
}

// LeadSubmission counts a wizard submit by outcome: saved, invalid or failed.
func (m *Metrics) LeadSubmission(outcome string) {
	if m == nil {
		return
	}
	m.LeadSubmissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StorageFailure() {
	if m == nil {
		return
	}
	m.StorageFailures.Inc()
}

func (m *Metrics) WSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsHandlerFor serves a specific registry.
func MetricsHandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
