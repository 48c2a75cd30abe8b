// Package metrics exposes Prometheus counters for tool calls, resource reads
// and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rickroller"

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	toolCalls     *prometheus.CounterVec
	resourceReads *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

// New creates a Metrics with its own registry, including Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Number of successful tool invocations.",
		}, []string{"tool", "autoplay"}),
		resourceReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_reads_total",
			Help:      "Number of resource reads served.",
		}, []string{"uri"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests by method and status code.",
		}, []string{"method", "code"}),
	}
	m.registry.MustRegister(
		m.toolCalls,
		m.resourceReads,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ToolCalled records a successful tool invocation.
func (m *Metrics) ToolCalled(tool string, autoplay bool) {
	m.toolCalls.WithLabelValues(tool, strconv.FormatBool(autoplay)).Inc()
}

// ResourceRead records a resource read.
func (m *Metrics) ResourceRead(uri string) {
	m.resourceReads.WithLabelValues(uri).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts every request passing through it.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
	})
}
