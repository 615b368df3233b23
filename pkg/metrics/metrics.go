// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LLMStreamDuration tracks LLM streaming response duration.
	LLMStreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_stream_duration_seconds",
			Help:    "LLM streaming response duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"provider", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"provider", "direction"},
	)

	// AgentIterations tracks tool-loop depth per turn.
	AgentIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agent_iterations_per_turn",
			Help:    "LLM invocations per agent turn",
			Buckets: []float64{1, 2, 3, 4, 5, 6},
		},
	)

	// ToolExecutionsTotal tracks tool dispatches by outcome.
	ToolExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_executions_total",
			Help: "Total tool executions",
		},
		[]string{"tool", "status"},
	)

	// ToolDuration tracks tool handler latency.
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tool_duration_seconds",
			Help:    "Tool handler duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tool"},
	)

	// WidgetsEmittedTotal tracks widgets sent to clients.
	WidgetsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widgets_emitted_total",
			Help: "Total widget events emitted",
		},
		[]string{"type"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// ConversationsActive tracks conversations held in memory.
	ConversationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversations_active",
			Help: "Number of conversations held in memory",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMStream records metrics for an LLM streaming response.
func RecordLLMStream(provider, status string, duration float64, tokensIn, tokensOut int) {
	LLMStreamDuration.WithLabelValues(provider, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(provider, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(provider, "out").Add(float64(tokensOut))
}

// RecordToolExecution records one tool dispatch.
func RecordToolExecution(tool string, success bool, duration float64) {
	status := "success"
	if !success {
		status = "error"
	}
	ToolExecutionsTotal.WithLabelValues(tool, status).Inc()
	ToolDuration.WithLabelValues(tool).Observe(duration)
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
