// Package resilience provides the shared primitives apikit's handlers are
// built from.
//
//   - Gate: the "acquire a permit, possibly waiting" contract every physical
//     send goes through. RateLimiter (token bucket) and NewLimiterGate
//     (golang.org/x/time/rate) implement it.
//   - CircuitBreaker: fails fast while an upstream is unhealthy.
//   - Bulkhead: caps concurrent in-flight calls.
//   - Backoff: delay schedule for optional retry spacing.
//
// Usage:
//
//	gate := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 5, Burst: 5})
//	if err := gate.Acquire(ctx); err != nil {
//	    return err
//	}
package resilience
