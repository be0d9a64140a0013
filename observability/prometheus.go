package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromCollector exposes outbound call metrics to Prometheus.
// A nil *PromCollector ignores every call.
type PromCollector struct {
	sendsTotal    *prometheus.CounterVec
	sendDuration  *prometheus.HistogramVec
	sendsInFlight *prometheus.GaugeVec
	retriesTotal  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

// NewPromCollector registers the collectors on reg under namespace. Like
// promauto, it panics if the metrics are already registered on reg.
func NewPromCollector(reg prometheus.Registerer, namespace string) *PromCollector {
	if namespace == "" {
		namespace = "apikit"
	}

	f := promauto.With(reg)
	return &PromCollector{
		sendsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Physical HTTP sends, including retries.",
		}, []string{"method", "host", "status_code"}),
		sendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_duration_seconds",
			Help:      "Duration of physical HTTP sends in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),
		sendsInFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sends_in_flight",
			Help:      "Sends currently in flight.",
		}, []string{"method", "host"}),
		retriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retry attempts after a failed attempt.",
		}, []string{"method", "host", "attempt"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors by kind.",
		}, []string{"kind", "method", "host"}),
	}
}

// SendStarted increments the in-flight gauge.
func (c *PromCollector) SendStarted(method, host string) {
	if c == nil {
		return
	}
	c.sendsInFlight.WithLabelValues(method, host).Inc()
}

// SendFinished decrements the in-flight gauge and records the send. A status
// of zero means no response was received.
func (c *PromCollector) SendFinished(method, host string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.sendsInFlight.WithLabelValues(method, host).Dec()
	c.sendsTotal.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	c.sendDuration.WithLabelValues(method, host).Observe(duration.Seconds())
}

// Retry counts a retry before the given attempt (1-based).
func (c *PromCollector) Retry(method, host string, attempt int) {
	if c == nil {
		return
	}
	c.retriesTotal.WithLabelValues(method, host, strconv.Itoa(attempt)).Inc()
}

// Error counts an error of the given kind.
func (c *PromCollector) Error(kind, method, host string) {
	if c == nil {
		return
	}
	c.errorsTotal.WithLabelValues(kind, method, host).Inc()
}
