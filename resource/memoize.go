package resource

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Memoized caches another resource's value for a fixed time. Concurrent
// resolutions while the cache is cold share one call to the inner resource.
// The shared call does not observe any single caller's cancellation; a
// caller whose context ends stops waiting and gets ctx.Err().
type Memoized struct {
	inner Resource
	ttl   time.Duration
	group singleflight.Group

	mu      sync.RWMutex
	value   any
	valid   bool
	expires time.Time
	now     func() time.Time
}

// Memoize wraps res so its value is computed at most once per ttl. A ttl of
// zero caches the first successful value forever. Failures are not cached.
func Memoize(res Resource, ttl time.Duration) *Memoized {
	return &Memoized{inner: res, ttl: ttl, now: time.Now}
}

func (m *Memoized) Ident() string { return m.inner.Ident() }

func (m *Memoized) Data(ctx context.Context) (any, error) {
	if v, ok := m.cached(); ok {
		return v, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan(m.inner.Ident(), func() (any, error) {
		if v, ok := m.cached(); ok {
			return v, nil
		}
		v, err := m.inner.Data(shared)
		if err != nil {
			return nil, err
		}
		m.store(v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

func (m *Memoized) store(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = v
	m.valid = true
	if m.ttl > 0 {
		m.expires = m.now().Add(m.ttl)
	} else {
		m.expires = time.Time{}
	}
}

// Invalidate drops the cached value.
func (m *Memoized) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = nil
	m.valid = false
	m.expires = time.Time{}
}

func (m *Memoized) cached() (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.valid {
		return nil, false
	}
	if m.ttl > 0 && !m.now().Before(m.expires) {
		return nil, false
	}
	return m.value, true
}
