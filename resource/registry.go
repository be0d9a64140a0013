package resource

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	apierrors "github.com/kbukum/apikit/errors"
)

// Registry is a concurrent set of resources keyed by identifier.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	entries sync.Map // string -> Resource
	size    atomic.Int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Insert adds res unless its identifier is already present. It returns true
// if res was added; on a collision the existing entry is kept.
func (r *Registry) Insert(res Resource) bool {
	if res == nil {
		return false
	}
	if _, loaded := r.entries.LoadOrStore(res.Ident(), res); loaded {
		return false
	}
	r.size.Add(1)
	return true
}

// MustInsert inserts res and panics on an identifier collision.
func (r *Registry) MustInsert(res Resource) {
	if !r.Insert(res) {
		panic(fmt.Sprintf("resource: identifier %q already registered", res.Ident()))
	}
}

// Get returns the resource registered under name.
func (r *Registry) Get(name string) (Resource, bool) {
	v, ok := r.entries.Load(name)
	if !ok {
		return nil, false
	}
	return v.(Resource), true
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.entries.Load(name)
	return ok
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	return int(r.size.Load())
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.Len())
	r.entries.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	slices.Sort(names)
	return names
}

// Range calls fn for each registered resource until fn returns false.
// The iteration order is unspecified.
func (r *Registry) Range(fn func(Resource) bool) {
	r.entries.Range(func(_, v any) bool {
		return fn(v.(Resource))
	})
}

// Resolve looks up name and renders its current value as text.
func (r *Registry) Resolve(ctx context.Context, name string) (string, error) {
	res, ok := r.Get(name)
	if !ok {
		return "", apierrors.ResourceNotFound(name).WithOp("resource.resolve")
	}
	v, err := res.Data(ctx)
	if err != nil {
		return "", apierrors.Wrap(apierrors.KindResourceFailed, fmt.Sprintf("resource %q failed", name), err).
			WithOp("resource.resolve").
			WithDetail("resource", name)
	}
	return fmt.Sprint(v), nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry atomic.Pointer[Registry]
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry.CompareAndSwap(nil, NewRegistry())
	})
	return defaultRegistry.Load()
}

// SetDefault replaces the process-wide registry. It is meant for startup
// wiring and tests.
func SetDefault(r *Registry) {
	defaultOnce.Do(func() {})
	defaultRegistry.Store(r)
}
