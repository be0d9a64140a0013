package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apierrors "github.com/kbukum/apikit/errors"
)

func TestRegistry_InsertDuplicateKeepsFirst(t *testing.T) {
	reg := NewRegistry()

	if !reg.Insert(Static("x", "first")) {
		t.Fatal("expected first insert to succeed")
	}
	if reg.Insert(Static("x", "second")) {
		t.Error("expected duplicate identifier to be rejected")
	}
	if reg.Len() != 1 {
		t.Errorf("expected size 1, got %d", reg.Len())
	}

	got, err := reg.Resolve(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "first" {
		t.Errorf("expected the original entry, got %q", got)
	}
}

func TestRegistry_GetAndContains(t *testing.T) {
	reg := NewRegistry()
	reg.Insert(Static("a", 1))

	if !reg.Contains("a") {
		t.Error("expected Contains(a)")
	}
	if reg.Contains("b") {
		t.Error("did not expect Contains(b)")
	}
	res, ok := reg.Get("a")
	if !ok || res.Ident() != "a" {
		t.Errorf("expected resource a, got %v %v", res, ok)
	}
	if _, ok := reg.Get("b"); ok {
		t.Error("did not expect b")
	}
	if reg.Insert(nil) {
		t.Error("nil resource must not be inserted")
	}
}

func TestRegistry_MustInsertPanicsOnCollision(t *testing.T) {
	reg := NewRegistry()
	reg.MustInsert(Static("a", 1))
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	reg.MustInsert(Static("a", 2))
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"c", "a", "b"} {
		reg.Insert(Static(n, n))
	}
	got := reg.Names()
	want := []string{"a", "b", "c"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRegistry_ResolveErrors(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("vault unavailable")
	reg.Insert(Func("secret", func(context.Context) (any, error) { return nil, boom }))

	_, err := reg.Resolve(context.Background(), "missing")
	if !apierrors.Is(err, apierrors.KindResourceNotFound) {
		t.Errorf("expected RESOURCE_NOT_FOUND, got %v", err)
	}

	_, err = reg.Resolve(context.Background(), "secret")
	if !apierrors.Is(err, apierrors.KindResourceFailed) {
		t.Errorf("expected RESOURCE_FAILED, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}
}

type stringer struct{ v int }

func (s stringer) String() string { return fmt.Sprintf("<%d>", s.v) }

func TestRegistry_ResolveFormatsValues(t *testing.T) {
	reg := NewRegistry()
	reg.Insert(Static("int", 42))
	reg.Insert(Static("stringer", stringer{7}))

	tests := map[string]string{"int": "42", "stringer": "<7>"}
	for name, want := range tests {
		got, err := reg.Resolve(context.Background(), name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: expected %q, got %q", name, want, got)
		}
	}
}

func TestRegistry_ConcurrentInsertAndLookup(t *testing.T) {
	reg := NewRegistry()
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.Insert(Static(fmt.Sprintf("r%d", i), i))
		}(i)
	}
	wg.Wait()

	var missing atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if !reg.Contains(fmt.Sprintf("r%d", i)) {
				missing.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if missing.Load() != 0 {
		t.Errorf("expected no lost writes, %d identifiers missing", missing.Load())
	}
	if reg.Len() != n {
		t.Errorf("expected %d entries, got %d", n, reg.Len())
	}
}

func TestRegistry_ConcurrentDuplicateInsert(t *testing.T) {
	reg := NewRegistry()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if reg.Insert(Static("same", i)) {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()
	if wins.Load() != 1 {
		t.Errorf("expected exactly one successful insert, got %d", wins.Load())
	}
	if reg.Len() != 1 {
		t.Errorf("expected size 1, got %d", reg.Len())
	}
}

func TestDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	if Default() != prev {
		t.Error("expected Default to be stable")
	}
	fresh := NewRegistry()
	SetDefault(fresh)
	if Default() != fresh {
		t.Error("expected SetDefault to replace the handle")
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("APIKIT_TEST_TOKEN", "s3cr3t")
	reg := NewRegistry()
	reg.Insert(Env("token", "APIKIT_TEST_TOKEN"))
	reg.Insert(Env("unset", "APIKIT_TEST_DEFINITELY_UNSET"))

	got, err := reg.Resolve(context.Background(), "token")
	if err != nil || got != "s3cr3t" {
		t.Errorf("expected s3cr3t, got %q (%v)", got, err)
	}
	if _, err := reg.Resolve(context.Background(), "unset"); err == nil {
		t.Error("expected error for unset variable")
	}
}

func TestMemoize_SharesInFlightAndCaches(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	inner := Func("token", func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "abc", nil
	})
	m := Memoize(inner, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Data(context.Background())
			if err != nil || v != "abc" {
				t.Errorf("unexpected result %v %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if _, err := m.Data(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected inner to run once, ran %d times", calls.Load())
	}
	if m.Ident() != "token" {
		t.Errorf("expected ident token, got %s", m.Ident())
	}
}

func TestMemoize_ExpiresAndSkipsFailures(t *testing.T) {
	var calls atomic.Int32
	fail := true
	inner := Func("t", func(context.Context) (any, error) {
		calls.Add(1)
		if fail {
			return nil, errors.New("flaky")
		}
		return calls.Load(), nil
	})
	m := Memoize(inner, time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }

	if _, err := m.Data(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	fail = false
	v1, _ := m.Data(context.Background())
	v2, _ := m.Data(context.Background())
	if v1 != v2 {
		t.Errorf("expected cached value, got %v then %v", v1, v2)
	}

	now = now.Add(2 * time.Minute)
	v3, _ := m.Data(context.Background())
	if v3 == v2 {
		t.Errorf("expected refresh after ttl, still %v", v3)
	}

	m.Invalidate()
	v4, _ := m.Data(context.Background())
	if v4 == v3 {
		t.Errorf("expected refresh after invalidate, still %v", v4)
	}
}

func TestMemoize_CanceledCallerDoesNotFailOthers(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	inner := Func("session", func(ctx context.Context) (any, error) {
		calls.Add(1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return "s-1", nil
	})
	m := Memoize(inner, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := m.Data(ctx)
		firstErr <- err
	}()
	<-started

	type result struct {
		v   any
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := m.Data(context.Background())
		second <- result{v, err}
	}()

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("expected the canceled caller to get context.Canceled, got %v", err)
	}
	close(release)

	got := <-second
	if got.err != nil || got.v != "s-1" {
		t.Errorf("expected the other caller to get the value, got %v %v", got.v, got.err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected inner to run once, ran %d times", calls.Load())
	}
}

func TestMemoize_CachesNilValue(t *testing.T) {
	var calls atomic.Int32
	inner := Func("optional", func(context.Context) (any, error) {
		calls.Add(1)
		return nil, nil
	})
	m := Memoize(inner, 0)

	for i := 0; i < 3; i++ {
		v, err := m.Data(context.Background())
		if err != nil || v != nil {
			t.Fatalf("unexpected result %v %v", v, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected a nil value to be cached, inner ran %d times", calls.Load())
	}

	m.Invalidate()
	if _, err := m.Data(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected invalidate to force a refetch, inner ran %d times", calls.Load())
	}
}
