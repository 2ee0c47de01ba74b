// Package metrics exposes prometheus collectors for the roster hub. All
// recording methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rosterhub"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	grpcRequests  *prometheus.CounterVec
	heartbeats    prometheus.Counter
	messagesSent  prometheus.Counter
	memberWrites  *prometheus.CounterVec
	syncFailures  prometheus.Counter
	streamClients prometheus.Gauge
	uploadedBytes prometheus.Counter
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		grpcRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "gRPC requests by method and status code.",
		}, []string{"method", "code"}),
		heartbeats: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeats_total",
			Help:      "Heartbeats recorded.",
		}),
		messagesSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Direct messages stored.",
		}),
		memberWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_writes_total",
			Help:      "Member directory mutations by action and result.",
		}, []string{"action", "result"}),
		syncFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_user_sync_failures_total",
			Help:      "Member updates whose paired user could not be synced.",
		}),
		streamClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "message_stream_clients",
			Help:      "Open message notification streams.",
		}),
		uploadedBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes accepted by file uploads.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveGRPC(method, code string) {
	if m == nil {
		return
	}
	m.grpcRequests.WithLabelValues(method, code).Inc()
}

func (m *Metrics) Heartbeat() {
	if m == nil {
		return
	}
	m.heartbeats.Inc()
}

func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}

func (m *Metrics) MemberWrite(action string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.memberWrites.WithLabelValues(action, result).Inc()
}

func (m *Metrics) SyncFailure() {
	if m == nil {
		return
	}
	m.syncFailures.Inc()
}

func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.streamClients.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.streamClients.Dec()
}

func (m *Metrics) Uploaded(n int64) {
	if m == nil {
		return
	}
	m.uploadedBytes.Add(float64(n))
}
