package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/apikit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the calling service.
	ServiceName string `mapstructure:"service_name"`
	// ServiceVersion is the version of the calling service.
	ServiceVersion string `mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `mapstructure:"interval"`
}

// DefaultMeterConfig returns defaults for local development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP HTTP.
// The caller must shut the provider down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the OpenTelemetry instruments for outbound calls.
type Metrics struct {
	sendTotal    metric.Int64Counter
	sendDuration metric.Float64Histogram
	sendActive   metric.Int64UpDownCounter
	callTotal    metric.Int64Counter
	callDuration metric.Float64Histogram
	errorTotal   metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	sendTotal, err := meter.Int64Counter("apikit.send.total",
		metric.WithDescription("Physical HTTP sends, including retries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.send.total counter: %w", err)
	}

	sendDuration, err := meter.Float64Histogram("apikit.send.duration",
		metric.WithDescription("Duration of physical HTTP sends in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.send.duration histogram: %w", err)
	}

	sendActive, err := meter.Int64UpDownCounter("apikit.send.active",
		metric.WithDescription("Sends currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.send.active gauge: %w", err)
	}

	callTotal, err := meter.Int64Counter("apikit.call.total",
		metric.WithDescription("Endpoint calls by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.call.total counter: %w", err)
	}

	callDuration, err := meter.Float64Histogram("apikit.call.duration",
		metric.WithDescription("Duration of endpoint calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.call.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("apikit.error.total",
		metric.WithDescription("Errors by kind and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apikit.error.total counter: %w", err)
	}

	return &Metrics{
		sendTotal:    sendTotal,
		sendDuration: sendDuration,
		sendActive:   sendActive,
		callTotal:    callTotal,
		callDuration: callDuration,
		errorTotal:   errorTotal,
	}, nil
}

// RecordSendStart increments the in-flight send count.
func (m *Metrics) RecordSendStart(ctx context.Context) {
	m.sendActive.Add(ctx, 1)
}

// RecordSendEnd decrements in-flight sends and records the finished send.
func (m *Metrics) RecordSendEnd(ctx context.Context, method, host, status string, duration time.Duration) {
	m.sendActive.Add(ctx, -1)
	m.sendTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("host", host),
		attribute.String("status", status),
	))
	m.sendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("host", host),
	))
}

// RecordCall records a finished endpoint call. outcome is "ok" or the
// failing stage.
func (m *Metrics) RecordCall(ctx context.Context, endpoint, outcome string, duration time.Duration) {
	m.callTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	))
	m.callDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}

// RecordError records an error by kind and component.
func (m *Metrics) RecordError(ctx context.Context, kind, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("component", component),
	))
}
