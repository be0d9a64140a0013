package observability

import (
	"context"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apikit/component"
)

// TracingComponent owns the tracer provider installed by InitTracer.
type TracingComponent struct {
	config TracerConfig

	mu       sync.Mutex
	provider *sdktrace.TracerProvider
}

// NewTracingComponent returns a component that exports traces per cfg.
func NewTracingComponent(cfg TracerConfig) *TracingComponent {
	return &TracingComponent{config: cfg}
}

// Name implements component.Component.
func (t *TracingComponent) Name() string { return "tracing" }

// Start installs the tracer provider.
func (t *TracingComponent) Start(ctx context.Context) error {
	tp, err := InitTracer(ctx, t.config)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.provider = tp
	t.mu.Unlock()
	return nil
}

// Stop flushes and shuts the provider down.
func (t *TracingComponent) Stop(ctx context.Context) error {
	t.mu.Lock()
	tp := t.provider
	t.provider = nil
	t.mu.Unlock()
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// Health implements component.Component.
func (t *TracingComponent) Health(context.Context) component.Health {
	return providerHealth(t.Name(), t.running())
}

func (t *TracingComponent) running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.provider != nil
}

// Tracer returns the apikit tracer from the global provider.
func (t *TracingComponent) Tracer() trace.Tracer { return Tracer(TracerName) }

// MetricsComponent owns the meter provider installed by InitMeter.
type MetricsComponent struct {
	config MeterConfig

	mu       sync.Mutex
	provider *sdkmetric.MeterProvider
}

// NewMetricsComponent returns a component that exports metrics per cfg.
func NewMetricsComponent(cfg MeterConfig) *MetricsComponent {
	return &MetricsComponent{config: cfg}
}

// Name implements component.Component.
func (m *MetricsComponent) Name() string { return "metrics" }

// Start installs the meter provider.
func (m *MetricsComponent) Start(ctx context.Context) error {
	mp, err := InitMeter(ctx, &m.config)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.provider = mp
	m.mu.Unlock()
	return nil
}

// Stop flushes and shuts the provider down.
func (m *MetricsComponent) Stop(ctx context.Context) error {
	m.mu.Lock()
	mp := m.provider
	m.provider = nil
	m.mu.Unlock()
	if mp == nil {
		return nil
	}
	return mp.Shutdown(ctx)
}

// Health implements component.Component.
func (m *MetricsComponent) Health(context.Context) component.Health {
	m.mu.Lock()
	running := m.provider != nil
	m.mu.Unlock()
	return providerHealth(m.Name(), running)
}

// Metrics creates the apikit instruments on the global meter provider.
func (m *MetricsComponent) Metrics() (*Metrics, error) {
	return NewMetrics(Meter(TracerName))
}

func providerHealth(name string, running bool) component.Health {
	if running {
		return component.Health{Name: name, Status: component.StatusHealthy}
	}
	return component.Health{Name: name, Status: component.StatusUnhealthy, Message: "not started"}
}
