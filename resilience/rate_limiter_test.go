package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestRateLimiter_AllowsBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 10, Burst: 3})
	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Errorf("request %d should be allowed", i)
		}
	}
	if rl.Allow() {
		t.Error("request over burst should be rejected")
	}
}

func TestRateLimiter_AcquireWaits(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 20, Burst: 1})
	ctx := context.Background()

	if err := rl.Acquire(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	start := time.Now()
	if err := rl.Acquire(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected second acquire to wait ~50ms, waited %s", elapsed)
	}
}

func TestRateLimiter_AcquireRespectsContext(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1})
	rl.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := rl.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestRateLimiter_OnWaitCallback(t *testing.T) {
	var mu sync.Mutex
	var waited []string
	rl := NewRateLimiter(RateLimiterConfig{
		Name:  "shared",
		Rate:  10,
		Burst: 1,
		OnWait: func(name string, _ time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			waited = append(waited, name)
		},
	})
	_ = rl.Acquire(context.Background())
	_ = rl.Acquire(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(waited) != 1 || waited[0] != "shared" {
		t.Errorf("expected one wait on 'shared', got %v", waited)
	}
}

func TestRateLimiter_Execute(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1})
	if err := rl.Execute(func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rl.Execute(func() error { return nil }); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	if rl.Rate() != 10 || rl.Burst() != 10 {
		t.Errorf("expected rate=10 burst=10, got %v/%d", rl.Rate(), rl.Burst())
	}
	if rl.Tokens() > 10 {
		t.Errorf("tokens must not exceed burst, got %v", rl.Tokens())
	}
}

func TestGates(t *testing.T) {
	ctx := context.Background()
	gates := map[string]Gate{
		"unlimited": Unlimited(),
		"x/time":    NewLimiterGate(rate.NewLimiter(rate.Inf, 1)),
		"bucket":    NewRateLimiter(DefaultRateLimiterConfig("bucket")),
	}
	for name, g := range gates {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				if err := g.Acquire(ctx); err != nil {
					t.Fatalf("acquire %d: %v", i, err)
				}
			}
		})
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := Unlimited().Acquire(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancelled context to fail, got %v", err)
	}
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Initial: 10 * time.Millisecond, Max: 50 * time.Millisecond, Factor: 2}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Millisecond},
		{2, 20 * time.Millisecond},
		{3, 40 * time.Millisecond},
		{4, 50 * time.Millisecond},
	}
	for _, tc := range tests {
		if got := b.Delay(tc.attempt); got != tc.want {
			t.Errorf("attempt %d: expected %s, got %s", tc.attempt, tc.want, got)
		}
	}
	if (Backoff{}).Delay(3) != 0 {
		t.Error("zero backoff must not delay")
	}
}

func TestSleep_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
