package capability

import (
	"context"
	"fmt"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/request"
)

// Capability transforms a request builder.
type Capability interface {
	Apply(ctx context.Context, b *request.Builder) error
}

// Named is implemented by capabilities that report a name in errors and logs.
type Named interface {
	Name() string
}

// Func adapts a function to the Capability interface.
type Func func(ctx context.Context, b *request.Builder) error

// Apply calls f.
func (f Func) Apply(ctx context.Context, b *request.Builder) error { return f(ctx, b) }

type namedFunc struct {
	name string
	fn   Func
}

// New returns a named capability backed by fn.
func New(name string, fn Func) Capability {
	return &namedFunc{name: name, fn: fn}
}

func (n *namedFunc) Name() string { return n.name }

func (n *namedFunc) Apply(ctx context.Context, b *request.Builder) error { return n.fn(ctx, b) }

// NameOf returns the capability's name, or its type when it is unnamed.
func NameOf(c Capability) string {
	if n, ok := c.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", c)
}

// Chain is an ordered list of capabilities.
type Chain []Capability

// Concat joins chains in order.
func Concat(chains ...Chain) Chain {
	n := 0
	for _, c := range chains {
		n += len(c)
	}
	out := make(Chain, 0, n)
	for _, c := range chains {
		out = append(out, c...)
	}
	return out
}

// Apply runs each capability in order and stops at the first failure, which is
// returned as a CAPABILITY_FAILED error naming the capability and its index.
// Nil entries are skipped.
func (c Chain) Apply(ctx context.Context, b *request.Builder) error {
	for i, capability := range c {
		if capability == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := capability.Apply(ctx, b); err != nil {
			return apierrors.CapabilityFailed(NameOf(capability), err).
				WithOp("capability.apply").
				WithDetail("index", i)
		}
	}
	return nil
}
