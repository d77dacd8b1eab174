// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to", "kind"}, // kind: guarded | forced
	)

	UnderwritingVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_underwriting_verdicts_total",
			Help: "Total number of underwriting verdicts by decision",
		},
		[]string{"decision", "source"}, // source: local | remote | fallback
	)

	SentimentLabels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_sentiment_labels_total",
			Help: "Total number of analyzed messages by sentiment label",
		},
		[]string{"label"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "advisor_turn_duration_seconds",
			Help: "Duration of conversation turn processing in seconds",
		},
		[]string{"state"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisor_sessions_active",
			Help: "Number of in-flight conversation sessions",
		},
	)

	DeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_delivery_failures_total",
			Help: "Total number of failed letter deliveries by channel",
		},
		[]string{"channel"},
	)
)
