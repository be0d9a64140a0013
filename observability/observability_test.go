package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/apikit/component"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); !strings.HasPrefix(got, tt.want) {
			t.Errorf("rate %v: expected %s, got %s", tt.rate, tt.want, got)
		}
	}
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordSendStart(ctx)
	metrics.RecordSendEnd(ctx, "GET", "api.example.com", "200", 100*time.Millisecond)
	metrics.RecordCall(ctx, "list_users", "ok", 120*time.Millisecond)
	metrics.RecordError(ctx, "TRANSPORT_FAILED", "client")
}

func TestStartSpanAndEndSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	_, ok := StartSpan(context.Background(), SpanSend)
	EndSpan(ok, nil)
	_, failed := StartSpan(context.Background(), SpanCall)
	EndSpan(failed, errors.New("boom"))

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != SpanSend || spans[0].Status().Code == codes.Error {
		t.Errorf("unexpected first span %s %v", spans[0].Name(), spans[0].Status())
	}
	if spans[1].Status().Code != codes.Error || len(spans[1].Events()) == 0 {
		t.Errorf("expected error status and event on second span, got %v", spans[1].Status())
	}
}

func TestPromCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPromCollector(reg, "test")

	c.SendStarted("GET", "h")
	c.SendFinished("GET", "h", 503, 10*time.Millisecond)
	c.SendStarted("GET", "h")
	c.SendFinished("GET", "h", 200, 10*time.Millisecond)
	c.Retry("GET", "h", 2)
	c.Error("TRANSPORT_FAILED", "GET", "h")

	if got := testutil.ToFloat64(c.sendsTotal.WithLabelValues("GET", "h", "503")); got != 1 {
		t.Errorf("expected one 503 send, got %v", got)
	}
	if got := testutil.ToFloat64(c.sendsInFlight.WithLabelValues("GET", "h")); got != 0 {
		t.Errorf("expected nothing in flight, got %v", got)
	}
	if got := testutil.ToFloat64(c.retriesTotal.WithLabelValues("GET", "h", "2")); got != 1 {
		t.Errorf("expected one retry, got %v", got)
	}
	if got := testutil.ToFloat64(c.errorsTotal.WithLabelValues("TRANSPORT_FAILED", "GET", "h")); got != 1 {
		t.Errorf("expected one error, got %v", got)
	}
}

func TestPromCollector_Nil(t *testing.T) {
	var c *PromCollector
	c.SendStarted("GET", "h")
	c.SendFinished("GET", "h", 200, time.Millisecond)
	c.Retry("GET", "h", 1)
	c.Error("x", "GET", "h")
}

func TestPromCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPromCollector(reg, "dup")
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewPromCollector(reg, "dup")
}

// collector starts an OTLP HTTP sink that accepts every export and returns
// its host:port.
func collector(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

// restoreProviders puts the global providers back after a test installs its own.
func restoreProviders(t *testing.T) {
	t.Helper()
	tp, mp := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
	})
}

func TestNewResource(t *testing.T) {
	res, err := newResource("svc", "1.2.3", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"service.name": "svc", "service.version": "1.2.3", "environment": "test"}
	for _, kv := range res.Attributes() {
		if v, ok := want[string(kv.Key)]; ok {
			if kv.Value.AsString() != v {
				t.Errorf("%s: expected %q, got %q", kv.Key, v, kv.Value.AsString())
			}
			delete(want, string(kv.Key))
		}
	}
	if len(want) != 0 {
		t.Errorf("missing attributes %v", want)
	}
}

func TestInitTracer(t *testing.T) {
	restoreProviders(t)
	cfg := DefaultTracerConfig("test-service")
	cfg.Environment = "test"
	cfg.Endpoint = collector(t)

	tp, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "op")
	span.End()
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitMeter(t *testing.T) {
	restoreProviders(t)
	cfg := DefaultMeterConfig("test-service")
	cfg.Endpoint = collector(t)
	cfg.Interval = 0

	mp, err := InitMeter(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("InitMeter: %v", err)
	}
	if err := mp.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestProviderComponents_NotStarted(t *testing.T) {
	tc := NewTracingComponent(DefaultTracerConfig("svc"))
	mc := NewMetricsComponent(DefaultMeterConfig("svc"))

	if tc.Name() != "tracing" || mc.Name() != "metrics" {
		t.Errorf("unexpected names %q %q", tc.Name(), mc.Name())
	}
	if h := tc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unstarted tracing to be unhealthy, got %+v", h)
	}
	if h := mc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unstarted metrics to be unhealthy, got %+v", h)
	}
	if err := tc.Stop(context.Background()); err != nil {
		t.Errorf("stopping an unstarted component: %v", err)
	}
	if err := mc.Stop(context.Background()); err != nil {
		t.Errorf("stopping an unstarted component: %v", err)
	}
}

func TestTracingComponent_Lifecycle(t *testing.T) {
	restoreProviders(t)

	tc := NewTracingComponent(TracerConfig{ServiceName: "svc", Endpoint: collector(t), Insecure: true, SampleRate: 1})
	if err := tc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h := tc.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %+v", h)
	}
	if tc.Tracer() == nil {
		t.Error("expected a tracer")
	}
	if err := tc.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}
