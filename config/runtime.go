package config

import (
	"context"
	"errors"

	"github.com/kbukum/apikit/client"
	"github.com/kbukum/apikit/component"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// Runtime is a started process: telemetry providers when configured and a
// client wired to them.
type Runtime struct {
	Client     *client.Client
	Logger     *logger.Logger
	Components *component.Registry
}

// Start starts the telemetry providers named in c, then creates and
// registers a client that reports to them. opts are applied after the
// options Start derives.
func (c *Config) Start(ctx context.Context, opts ...client.Option) (*Runtime, error) {
	log := c.NewLogger()
	reg := component.NewRegistry(log.WithComponent("component"))

	var (
		tracing *observability.TracingComponent
		metrics *observability.MetricsComponent
	)
	if c.Tracing != nil {
		tracing = observability.NewTracingComponent(*c.Tracing)
		if err := reg.Register(tracing); err != nil {
			return nil, err
		}
	}
	if c.Metrics != nil {
		metrics = observability.NewMetricsComponent(*c.Metrics)
		if err := reg.Register(metrics); err != nil {
			return nil, err
		}
	}
	if err := reg.Start(ctx); err != nil {
		return nil, errors.Join(err, reg.Stop(ctx))
	}

	derived := []client.Option{client.WithLogger(log.WithComponent("client"))}
	if tracing != nil {
		derived = append(derived, client.WithTracer(tracing.Tracer()))
	}
	if metrics != nil {
		m, err := metrics.Metrics()
		if err != nil {
			return nil, errors.Join(err, reg.Stop(ctx))
		}
		derived = append(derived, client.WithMetrics(m))
	}

	cl, err := client.New(c.Client, append(derived, opts...)...)
	if err != nil {
		return nil, errors.Join(err, reg.Stop(ctx))
	}
	if err := reg.Register(cl); err != nil {
		return nil, errors.Join(err, reg.Stop(ctx))
	}
	if err := reg.Start(ctx); err != nil {
		return nil, errors.Join(err, reg.Stop(ctx))
	}

	log.Info("apikit runtime started", logger.Fields(
		"components", reg.Names(),
		"environment", c.Environment,
	))
	return &Runtime{Client: cl, Logger: log, Components: reg}, nil
}

// Stop stops every component in reverse start order.
func (r *Runtime) Stop(ctx context.Context) error {
	return r.Components.Stop(ctx)
}
