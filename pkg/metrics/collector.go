package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sayu-dev/showcase-bot/internal/session"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	flowTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_transitions_total",
			Help: "Total number of flow session transitions",
		},
		[]string{"from", "to"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	collaboratorRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_requests_total",
			Help: "Total number of requests to the showcase and render services",
		},
		[]string{"operation", "status"},
	)
	collaboratorRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collaborator_request_duration_seconds",
			Help:    "Duration of collaborator requests in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_flow_sessions",
			Help: "Current number of live flow sessions",
		},
	)
)

func init() {
	session.RegisterTransitionRecorder(RecordFlowTransition)
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordFlowTransition tracks session kind transitions.
func RecordFlowTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	flowTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// RecordCollaboratorRequest tracks a call to an external collaborator.
func RecordCollaboratorRequest(operation, status string, duration time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	collaboratorRequestsTotal.WithLabelValues(operation, status).Inc()
	collaboratorRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetActiveSessions updates the gauge for live flow sessions.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// SessionCollector periodically samples the session registry size.
type SessionCollector struct {
	registry *session.Registry
}

// NewSessionCollector builds a collector bound to the registry.
func NewSessionCollector(registry *session.Registry) *SessionCollector {
	return &SessionCollector{registry: registry}
}

// Run samples the registry every 10 seconds until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.registry == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		SetActiveSessions(c.registry.Len())

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}
