package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Backoff describes an exponential delay schedule.
type Backoff struct {
	// Initial is the delay before the second attempt.
	Initial time.Duration
	// Max caps any single delay.
	Max time.Duration
	// Factor multiplies the delay after each attempt.
	Factor float64
	// Jitter adds up to ±Jitter of randomness (0.0 to 1.0).
	Jitter float64
}

// DefaultBackoff returns a 100ms doubling schedule capped at 10s.
func DefaultBackoff() Backoff {
	return Backoff{
		Initial: 100 * time.Millisecond,
		Max:     10 * time.Second,
		Factor:  2.0,
		Jitter:  0.1,
	}
}

// Delay returns the wait after the given failed attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Initial <= 0 {
		return 0
	}
	factor := b.Factor
	if factor <= 0 {
		factor = 2.0
	}
	delay := float64(b.Initial) * math.Pow(factor, float64(attempt-1))

	if b.Jitter > 0 {
		spread := delay * b.Jitter
		delay += (rand.Float64()*2 - 1) * spread
	}
	if b.Max > 0 && delay > float64(b.Max) {
		delay = float64(b.Max)
	}
	if delay < 0 {
		delay = float64(b.Initial)
	}
	return time.Duration(delay)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
