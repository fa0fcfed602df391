package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application.
// It implements ports.MetricsRecorder.
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	ArchitecturesCreated prometheus.Counter
	NodesGenerated       prometheus.Counter
	EdgesGenerated       prometheus.Counter
	CodeGenerations      prometheus.Counter
	CodeBytes            prometheus.Histogram

	// Model metrics
	ModelInvocations *prometheus.CounterVec
	ModelDuration    *prometheus.HistogramVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace
// registered on a private registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ArchitecturesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "architectures_created_total",
			Help:      "Total number of architectures created",
		}),
		NodesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_generated_total",
			Help:      "Total number of nodes in created architectures",
		}),
		EdgesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_generated_total",
			Help:      "Total number of edges in created architectures",
		}),
		CodeGenerations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_generations_total",
			Help:      "Total number of successful code generations",
		}),
		CodeBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generated_code_bytes",
			Help:      "Size of generated code in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}),
		ModelInvocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_invocations_total",
				Help:      "Total number of generative model calls",
			},
			[]string{"stage", "status"},
		),
		ModelDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_invocation_duration_seconds",
				Help:      "Generative model call duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"stage"},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of architecture store operations",
			},
			[]string{"operation", "status"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.ArchitecturesCreated,
		c.NodesGenerated,
		c.EdgesGenerated,
		c.CodeGenerations,
		c.CodeBytes,
		c.ModelInvocations,
		c.ModelDuration,
		c.StoreOperations,
	)

	return c
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ArchitectureCreated implements ports.MetricsRecorder
func (c *Collector) ArchitectureCreated(nodes, edges int) {
	c.ArchitecturesCreated.Inc()
	c.NodesGenerated.Add(float64(nodes))
	c.EdgesGenerated.Add(float64(edges))
}

// CodeGenerated implements ports.MetricsRecorder
func (c *Collector) CodeGenerated(codeLength int) {
	c.CodeGenerations.Inc()
	c.CodeBytes.Observe(float64(codeLength))
}

// ModelInvocation implements ports.MetricsRecorder
func (c *Collector) ModelInvocation(stage string, status string, seconds float64) {
	c.ModelInvocations.WithLabelValues(stage, status).Inc()
	c.ModelDuration.WithLabelValues(stage).Observe(seconds)
}

// StoreOperation implements ports.MetricsRecorder
func (c *Collector) StoreOperation(operation string, status string) {
	c.StoreOperations.WithLabelValues(operation, status).Inc()
}

// HTTPMiddleware records request counts and latency by chi route pattern
func (c *Collector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// NopRecorder discards all measurements
type NopRecorder struct{}

// NewNopRecorder returns a recorder that records nothing
func NewNopRecorder() NopRecorder { return NopRecorder{} }

func (NopRecorder) ArchitectureCreated(nodes, edges int)                         {}
func (NopRecorder) CodeGenerated(codeLength int)                                 {}
func (NopRecorder) ModelInvocation(stage string, status string, seconds float64) {}
func (NopRecorder) StoreOperation(operation string, status string)               {}
