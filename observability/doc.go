// Package observability wires OpenTelemetry tracing and metrics, plus an
// optional Prometheus collector, for outbound API calls.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("billing-sync"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("billing-sync"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("billing-sync"))
//
// Prometheus:
//
//	prom := observability.NewPromCollector(prometheus.DefaultRegisterer, "billing")
//	h := handler.Wrap(base, handler.Metrics(prom, nil))
//
// TracingComponent and MetricsComponent own the providers when a process is
// started through config.Config.Start.
package observability
