// Package metrics implements the observability hooks as Prometheus
// collectors and serves them in the text exposition format.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/talklike/pkg/observability"
)

const namespace = "talklike"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	compiles        *prometheus.CounterVec
	compileDuration *prometheus.HistogramVec
	transforms      *prometheus.CounterVec
	transformBytes  *prometheus.CounterVec
	transformTime   *prometheus.HistogramVec
	cacheOps        *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	httpClient      *prometheus.CounterVec
	httpClientTime  *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	requestTime     *prometheus.HistogramVec
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "filter_compiles_total",
			Help: "Filter definitions assembled, by filter and result.",
		}, []string{"filter", "result"}),
		compileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "filter_compile_duration_seconds",
			Help:    "Time spent loading and assembling a filter.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"filter"}),
		transforms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "transforms_total",
			Help: "Texts transformed, by filter and result.",
		}, []string{"filter", "result"}),
		transformBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "transform_output_bytes_total",
			Help: "Bytes of transformed text produced.",
		}, []string{"filter"}),
		transformTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "transform_duration_seconds",
			Help:    "Time spent transforming one text, cache lookups included.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 9),
		}, []string{"filter"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_operations_total",
			Help: "Cache lookups and writes, by key type and operation.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}, []string{"key_type"}),
		httpClient: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_client_requests_total",
			Help: "Outgoing HTTP requests to remote catalogs, by host and status.",
		}, []string{"host", "status"}),
		httpClientTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_client_duration_seconds",
			Help:    "Outgoing HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "API requests served, by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.compiles, m.compileDuration,
		m.transforms, m.transformBytes, m.transformTime,
		m.cacheOps, m.cacheBytes,
		m.httpClient, m.httpClientTime,
		m.requests, m.requestTime,
	)
	return m
}

// Install registers m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnCompileStart(context.Context, string) {}

func (m *Metrics) OnCompileComplete(_ context.Context, filter string, _ int, d time.Duration, err error) {
	m.compiles.WithLabelValues(filter, result(err)).Inc()
	m.compileDuration.WithLabelValues(filter).Observe(d.Seconds())
}

func (m *Metrics) OnTransformStart(context.Context, string, int) {}

func (m *Metrics) OnTransformComplete(_ context.Context, filter string, size int, d time.Duration, err error) {
	m.transforms.WithLabelValues(filter, result(err)).Inc()
	m.transformTime.WithLabelValues(filter).Observe(d.Seconds())
	if err == nil {
		m.transformBytes.WithLabelValues(filter).Add(float64(size))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.httpClient.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.httpClientTime.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.httpClient.WithLabelValues(host, "error").Inc()
}

// ObserveRequest records one served API request. route is the route
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestTime.WithLabelValues(route, method).Observe(d.Seconds())
}
