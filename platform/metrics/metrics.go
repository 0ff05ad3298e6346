// Package metrics owns the Prometheus collectors exported on /metrics.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Utterance outcomes.
const (
	OutcomeExtracted = "extracted"
	OutcomeNoop      = "noop"
	OutcomeClarified = "clarified"
)

// Metrics holds the conversation collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	utterances      *prometheus.CounterVec
	clarifications  *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	matchScores     prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		utterances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadchat_utterances_total",
			Help: "Inbound user utterances by processing outcome.",
		}, []string{"outcome"}),
		clarifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadchat_clarifications_total",
			Help: "Clarification prompts issued by ambiguity reason.",
		}, []string{"reason"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadchat_recommendations_total",
			Help: "Service recommendations made.",
		}, []string{"service"}),
		matchScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leadchat_expert_match_score",
			Help:    "Penalized scores of experts returned by ranking.",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
	}
	reg.MustRegister(
		m.utterances,
		m.clarifications,
		m.recommendations,
		m.matchScores,
		collectors.NewGoCollector(),
	)
	return m
}

// Utterance counts one processed utterance.
func (m *Metrics) Utterance(outcome string) {
	if m == nil {
		return
	}
	m.utterances.WithLabelValues(outcome).Inc()
}

// Clarification counts one clarification prompt.
func (m *Metrics) Clarification(reason string) {
	if m == nil {
		return
	}
	m.clarifications.WithLabelValues(reason).Inc()
}

// Recommendation counts one service recommendation.
func (m *Metrics) Recommendation(service string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(service).Inc()
}

// MatchScore observes one ranked expert's final score.
func (m *Metrics) MatchScore(score float64) {
	if m == nil {
		return
	}
	m.matchScores.Observe(score)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
