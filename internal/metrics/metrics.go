// Package metrics exposes prometheus collectors for submissions, requests and gate decisions.
// Each Metrics owns its own registry so a CLI run (or a test) never shares state with another.
package metrics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/assist/pkg/client"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/gate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	stepTransitions    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	outcomesTotal      *prometheus.CounterVec
	submitDuration     *prometheus.HistogramVec
	gateDecisions      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_requests_total",
			Help: "Requests sent to the remote API by endpoint and status code (0 when no response)",
		}, []string{"endpoint", "code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assist_request_duration_seconds",
			Help:    "Round trip time of remote API requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"endpoint"}),
		stepTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_step_transitions_total",
			Help: "Wizard step entries and exits by flow, step and direction",
		}, []string{"flow", "step", "direction"}),
		validationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_validation_failures_total",
			Help: "Fields rejected by validation by flow and field",
		}, []string{"flow", "field"}),
		outcomesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_outcomes_total",
			Help: "Submission outcomes by flow and status",
		}, []string{"flow", "status"}),
		submitDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assist_submit_duration_seconds",
			Help:    "Time from submission start to a terminal outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"flow"}),
		gateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_gate_decisions_total",
			Help: "Auth gate decisions by target and verdict",
		}, []string{"target", "verdict"}),
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Hooks returns wizard lifecycle hooks feeding the step, validation and outcome collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.stepTransitions.WithLabelValues(label(e.Flow), e.Step, "enter").Inc()
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			m.stepTransitions.WithLabelValues(label(e.Flow), e.Step, "leave").Inc()
		},
		OnValidate: func(_ context.Context, e *domain.ValidateEvent) {
			for field := range e.Result {
				m.validationFailures.WithLabelValues(label(e.Flow), field).Inc()
			}
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			m.outcomesTotal.WithLabelValues(label(e.Flow), string(e.Outcome.Status)).Inc()
			m.submitDuration.WithLabelValues(label(e.Flow)).Observe(e.Duration.Seconds())
		},
	}
}

// ObserveRequest is a client.Observer.
func (m *Metrics) ObserveRequest(e client.RequestEvent) {
	m.requestsTotal.WithLabelValues(e.Endpoint, strconv.Itoa(e.StatusCode)).Inc()
	m.requestDuration.WithLabelValues(e.Endpoint).Observe(e.Duration.Seconds())
}

// ObserveGate records a gate decision.
func (m *Metrics) ObserveGate(target string, d gate.Decision) {
	verdict := "redirect"
	if d.Allowed {
		verdict = "allow"
	}
	m.gateDecisions.WithLabelValues(target, verdict).Inc()
}

// WriteToTextfile dumps the registry in the node exporter textfile format.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
