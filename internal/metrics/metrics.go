// Package metrics exposes Prometheus instrumentation for the decision
// engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records decision activity. A nil *Metrics is a no-op, so tests
// and one-shot tools can pass nil instead of registering collectors.
type Metrics struct {
	decisions        *prometheus.CounterVec
	alerts           *prometheus.CounterVec
	evaluateDuration prometheus.Histogram
	notifyFailures   *prometheus.CounterVec
}

// New registers the engine collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "credit_engine",
			Name:      "decisions_total",
			Help:      "Final decisions by outcome and rule policy.",
		}, []string{"outcome", "policy"}),
		alerts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "credit_engine",
			Name:      "alerts_total",
			Help:      "Alerts raised during rule evaluation, by severity.",
		}, []string{"severity"}),
		evaluateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "credit_engine",
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent evaluating rule groups.",
			Buckets:   prometheus.DefBuckets,
		}),
		notifyFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "credit_engine",
			Name:      "notification_failures_total",
			Help:      "Decision notifications that could not be delivered, by channel.",
		}, []string{"channel"}),
	}
}

// DecisionTaken counts a final decision.
func (m *Metrics) DecisionTaken(outcome, policy string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(outcome, policy).Inc()
}

// AlertRaised counts one raised alert.
func (m *Metrics) AlertRaised(severity string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(severity).Inc()
}

// ObserveEvaluation records the duration of one rule group evaluation.
func (m *Metrics) ObserveEvaluation(d time.Duration) {
	if m == nil {
		return
	}
	m.evaluateDuration.Observe(d.Seconds())
}

// NotifyFailed counts a notification delivery failure.
func (m *Metrics) NotifyFailed(channel string) {
	if m == nil {
		return
	}
	m.notifyFailures.WithLabelValues(channel).Inc()
}
