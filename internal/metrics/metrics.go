package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the bot
type Metrics struct {
	CognitionTurns   prometheus.Counter
	CognitionLatency prometheus.Histogram
	CognitionErrors  *prometheus.CounterVec
	ToolInvocations  *prometheus.CounterVec
	GatewayFallbacks *prometheus.CounterVec
	FactsLearned     prometheus.Counter
}

var globalMetrics *Metrics

// Init initializes the Prometheus metrics
func Init() *Metrics {
	metrics := &Metrics{
		CognitionTurns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sambot_cognition_turns_total",
			Help: "Total number of messages that passed the engagement gate",
		}),

		CognitionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sambot_cognition_turn_duration_seconds",
			Help:    "Full cognition turn latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120}, // LLM calls dominate
		}),

		CognitionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sambot_cognition_errors_total",
			Help: "Total number of cognition errors by type",
		}, []string{"error_type"}),

		ToolInvocations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sambot_tool_invocations_total",
			Help: "Total number of tool invocations by tool and outcome",
		}, []string{"tool", "outcome"}), // outcome: "ok" or "error"

		GatewayFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sambot_llm_gateway_fallbacks_total",
			Help: "Total number of cascade fallbacks by destination tier",
		}, []string{"tier"}),

		FactsLearned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sambot_facts_learned_total",
			Help: "Total number of user facts persisted to long-term memory",
		}),
	}

	globalMetrics = metrics
	return metrics
}

// Get returns the global metrics instance, nil when metrics are disabled.
// Record methods on a nil receiver are no-ops.
func Get() *Metrics {
	return globalMetrics
}

// RecordTurn records an engaged cognition turn
func (m *Metrics) RecordTurn() {
	if m == nil {
		return
	}
	m.CognitionTurns.Inc()
}

// RecordTurnLatency records full-turn latency
func (m *Metrics) RecordTurnLatency(seconds float64) {
	if m == nil {
		return
	}
	m.CognitionLatency.Observe(seconds)
}

// RecordError records a cognition error
func (m *Metrics) RecordError(errorType string) {
	if m == nil {
		return
	}
	m.CognitionErrors.WithLabelValues(errorType).Inc()
}

// RecordToolInvocation records one tool invocation outcome
func (m *Metrics) RecordToolInvocation(tool string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.ToolInvocations.WithLabelValues(tool, outcome).Inc()
}

// RecordGatewayFallback records a cascade fallback into the given tier
func (m *Metrics) RecordGatewayFallback(tier string) {
	if m == nil {
		return
	}
	m.GatewayFallbacks.WithLabelValues(tier).Inc()
}

// RecordFactLearned records a persisted user fact
func (m *Metrics) RecordFactLearned() {
	if m == nil {
		return
	}
	m.FactsLearned.Inc()
}
