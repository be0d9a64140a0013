package resource

import (
	"context"
	"fmt"
	"os"
)

// Resource is a named value computed on demand.
type Resource interface {
	// Ident returns the identifier the resource is registered and referenced under.
	Ident() string
	// Data produces the current value. The value is rendered with fmt.Sprint.
	Data(ctx context.Context) (any, error)
}

type static struct {
	ident string
	value any
}

// Static returns a resource that always yields value.
func Static(ident string, value any) Resource {
	return &static{ident: ident, value: value}
}

func (s *static) Ident() string                     { return s.ident }
func (s *static) Data(context.Context) (any, error) { return s.value, nil }
func (s *static) String() string                    { return fmt.Sprintf("static(%s)", s.ident) }

// DataFunc computes a resource value.
type DataFunc func(ctx context.Context) (any, error)

type funcResource struct {
	ident string
	fn    DataFunc
}

// Func returns a resource backed by fn.
func Func(ident string, fn DataFunc) Resource {
	return &funcResource{ident: ident, fn: fn}
}

func (f *funcResource) Ident() string                         { return f.ident }
func (f *funcResource) Data(ctx context.Context) (any, error) { return f.fn(ctx) }

// Env returns a resource that reads an environment variable each time it is
// resolved. An unset variable is an error.
func Env(ident, key string) Resource {
	return Func(ident, func(context.Context) (any, error) {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil, fmt.Errorf("environment variable %s is not set", key)
		}
		return v, nil
	})
}
