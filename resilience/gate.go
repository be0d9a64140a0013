package resilience

import (
	"context"

	"golang.org/x/time/rate"
)

// Gate grants permits for network sends. Acquire may wait and returns an
// error only when ctx ends first.
type Gate interface {
	Acquire(ctx context.Context) error
}

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context) error

// Acquire calls f(ctx).
func (f GateFunc) Acquire(ctx context.Context) error { return f(ctx) }

// Unlimited returns a gate that never waits.
func Unlimited() Gate {
	return GateFunc(func(ctx context.Context) error { return ctx.Err() })
}

// limiterGate adapts a golang.org/x/time/rate limiter.
type limiterGate struct {
	limiter *rate.Limiter
}

// NewLimiterGate wraps an x/time/rate limiter as a Gate.
func NewLimiterGate(l *rate.Limiter) Gate {
	return &limiterGate{limiter: l}
}

func (g *limiterGate) Acquire(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}
