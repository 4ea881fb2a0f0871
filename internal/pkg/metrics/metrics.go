package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "solana_liquidity"

// Metrics groups the collectors exported by the tool server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	toolCalls        *prometheus.CounterVec
	toolDuration     *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Tool invocation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests to DEX providers and the Solana RPC by source and outcome.",
		}, []string{"source", "outcome"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_cache_hits_total",
			Help:      "Provider responses served from the local cache.",
		}, []string{"source"}),
	}
	reg.MustRegister(m.toolCalls, m.toolDuration, m.upstreamRequests, m.cacheHits)
	return m
}

// ObserveToolCall records one tool invocation.
func (m *Metrics) ObserveToolCall(tool, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// IncUpstream records one upstream request.
func (m *Metrics) IncUpstream(source, outcome string) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(source, outcome).Inc()
}

// IncCacheHit records a provider response served from cache.
func (m *Metrics) IncCacheHit(source string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(source).Inc()
}
