package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
)

// DefaultStopTimeout bounds each component's Stop.
const DefaultStopTimeout = 10 * time.Second

type entry struct {
	component Component
	started   bool
}

// Registry starts and stops components in a fixed order.
type Registry struct {
	mu      sync.Mutex
	entries []*entry
	lookup  map[string]*entry
	log     *logger.Logger
}

// NewRegistry creates an empty registry. A nil log uses logger.Get("component").
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Get("component")
	}
	return &Registry{lookup: make(map[string]*entry), log: log}
}

// Register adds c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, ok := r.lookup[name]; ok {
		return apierrors.Newf(apierrors.KindInvalidConfig, "component %s already registered", name).
			WithOp("component.register")
	}
	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.lookup[name] = e
	r.log.Debug("component registered", logger.Fields("component", name))
	return nil
}

// Start starts every component that is not running, in registration order,
// and stops at the first failure. Components started earlier stay running.
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.started {
			continue
		}
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.MergeWithError(logger.Fields("component", name), err))
			return fmt.Errorf("start %s: %w", name, err)
		}
		e.started = true
		r.log.Debug("component started", logger.Fields("component", name))
	}
	return nil
}

// Stop stops running components in reverse registration order. Every
// component is stopped even if some fail; the failures are joined.
func (r *Registry) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, DefaultStopTimeout)
		err := e.component.Stop(stopCtx)
		cancel()
		e.started = false
		if err != nil {
			r.log.Error("component stop failed", logger.MergeWithError(logger.Fields("component", name), err))
			errs = append(errs, err)
			continue
		}
		r.log.Debug("component stopped", logger.Fields("component", name))
	}
	return errors.Join(errs...)
}

// Health reports every registered component in registration order.
func (r *Registry) Health(ctx context.Context) []Health {
	r.mu.Lock()
	entries := append([]*entry(nil), r.entries...)
	r.mu.Unlock()

	out := make([]Health, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.component.Health(ctx))
	}
	return out
}

// Get returns the component registered under name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.lookup[name]; ok {
		return e.component
	}
	return nil
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.component.Name()
	}
	return names
}
