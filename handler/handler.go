package handler

import (
	"context"
	"net/http"

	"github.com/kbukum/apikit/request"
)

// Handler executes a request and returns the raw response.
type Handler interface {
	Execute(ctx context.Context, req *request.Request) (*http.Response, error)
}

// Func adapts a function to the Handler interface.
type Func func(ctx context.Context, req *request.Request) (*http.Response, error)

// Execute calls f.
func (f Func) Execute(ctx context.Context, req *request.Request) (*http.Response, error) {
	return f(ctx, req)
}

// Decorator wraps a handler.
type Decorator func(Handler) Handler

// Wrap applies decorators to h in order, so the last decorator is outermost.
// Nil decorators are skipped.
func Wrap(h Handler, decorators ...Decorator) Handler {
	for _, d := range decorators {
		if d != nil {
			h = d(h)
		}
	}
	return h
}

// Compose merges decorators into one, preserving Wrap's ordering.
func Compose(decorators ...Decorator) Decorator {
	return func(h Handler) Handler { return Wrap(h, decorators...) }
}
