// Package metrics exposes orchestration measurements as Prometheus
// collectors on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/planmesh/core"
)

const namespace = "planmesh"

// Collector implements core.Recorder and serves the registry over HTTP.
type Collector struct {
	registry *prometheus.Registry

	intents      *prometheus.CounterVec
	routes       *prometheus.CounterVec
	agentCalls   *prometheus.CounterVec
	agentLatency *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

var _ core.Recorder = (*Collector)(nil)

// New creates a Collector. Go runtime and process collectors are registered
// alongside the planmesh series.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Messages classified, by intent.",
		}, []string{"intent"}),
		routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_total",
			Help:      "Routed intents, by intent and success.",
		}, []string{"intent", "success"}),
		agentCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_calls_total",
			Help:      "Domain agent calls, by agent and outcome.",
		}, []string{"agent", "outcome"}),
		agentLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_call_duration_seconds",
			Help:      "Domain agent call latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"agent"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.intents, c.routes, c.agentCalls, c.agentLatency, c.httpRequests, c.httpLatency,
	)
	return c
}

// IntentClassified counts a classified message.
func (c *Collector) IntentClassified(intent core.Intent) {
	c.intents.WithLabelValues(string(intent)).Inc()
}

// RouteCompleted counts a routed intent.
func (c *Collector) RouteCompleted(intent core.Intent, success bool) {
	c.routes.WithLabelValues(string(intent), strconv.FormatBool(success)).Inc()
}

// AgentCalled counts an agent call and observes its latency.
func (c *Collector) AgentCalled(agent, outcome string, d time.Duration) {
	c.agentCalls.WithLabelValues(agent, outcome).Inc()
	c.agentLatency.WithLabelValues(agent).Observe(d.Seconds())
}

// ObserveHTTP records a served request. route is the matched pattern, not
// the raw path.
func (c *Collector) ObserveHTTP(method, route string, code int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
