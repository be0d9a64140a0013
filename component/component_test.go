package component

import (
	"context"
	"errors"
	"slices"
	"testing"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
)

type fake struct {
	name     string
	startErr error
	stopErr  error
	status   Status
	events   *[]string
}

func (f *fake) Name() string { return f.name }

func (f *fake) Start(context.Context) error {
	*f.events = append(*f.events, "start:"+f.name)
	return f.startErr
}

func (f *fake) Stop(context.Context) error {
	*f.events = append(*f.events, "stop:"+f.name)
	return f.stopErr
}

func (f *fake) Health(context.Context) Health {
	return Health{Name: f.name, Status: f.status}
}

func TestRegistry_Order(t *testing.T) {
	var events []string
	r := NewRegistry(logger.Nop())
	for _, name := range []string{"tracing", "metrics", "client"} {
		if err := r.Register(&fake{name: name, events: &events}); err != nil {
			t.Fatal(err)
		}
	}

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"start:tracing", "start:metrics", "start:client",
		"stop:client", "stop:metrics", "stop:tracing",
	}
	if !slices.Equal(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
	if got := r.Names(); !slices.Equal(got, []string{"tracing", "metrics", "client"}) {
		t.Errorf("unexpected names %v", got)
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	var events []string
	r := NewRegistry(logger.Nop())
	_ = r.Register(&fake{name: "client", events: &events})
	err := r.Register(&fake{name: "client", events: &events})
	if !apierrors.Is(err, apierrors.KindInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestRegistry_StartFailure(t *testing.T) {
	var events []string
	r := NewRegistry(logger.Nop())
	_ = r.Register(&fake{name: "a", events: &events})
	_ = r.Register(&fake{name: "b", startErr: errors.New("no collector"), events: &events})
	_ = r.Register(&fake{name: "c", events: &events})

	if err := r.Start(context.Background()); err == nil {
		t.Fatal("expected start failure")
	}
	if err := r.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"start:a", "start:b", "stop:a"}
	if !slices.Equal(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestRegistry_StartOnlyNew(t *testing.T) {
	var events []string
	r := NewRegistry(logger.Nop())
	_ = r.Register(&fake{name: "a", events: &events})
	_ = r.Start(context.Background())
	_ = r.Register(&fake{name: "b", events: &events})
	_ = r.Start(context.Background())

	if want := []string{"start:a", "start:b"}; !slices.Equal(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestRegistry_StopJoinsErrors(t *testing.T) {
	var events []string
	errA, errB := errors.New("a failed"), errors.New("b failed")
	r := NewRegistry(logger.Nop())
	_ = r.Register(&fake{name: "a", stopErr: errA, events: &events})
	_ = r.Register(&fake{name: "b", stopErr: errB, events: &events})
	_ = r.Start(context.Background())

	err := r.Stop(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestRegistry_HealthAndGet(t *testing.T) {
	var events []string
	r := NewRegistry(logger.Nop())
	_ = r.Register(&fake{name: "a", status: StatusHealthy, events: &events})
	_ = r.Register(&fake{name: "b", status: StatusDegraded, events: &events})

	h := r.Health(context.Background())
	if len(h) != 2 || h[1].Status != StatusDegraded {
		t.Errorf("unexpected health %+v", h)
	}
	if r.Get("a") == nil || r.Get("missing") != nil {
		t.Error("unexpected Get result")
	}
}
