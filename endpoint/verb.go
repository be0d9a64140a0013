package endpoint

import (
	"context"
	"net/http"

	"github.com/kbukum/apikit/capability"
)

// Verb is an HTTP method with an optional body capability. Only POST, PUT,
// PATCH and DELETE carry bodies.
type Verb struct {
	Method string
	Body   capability.Capability
}

// Get returns a GET verb.
func Get() Verb { return Verb{Method: http.MethodGet} }

// Head returns a HEAD verb.
func Head() Verb { return Verb{Method: http.MethodHead} }

// Options returns an OPTIONS verb.
func Options() Verb { return Verb{Method: http.MethodOptions} }

// Post returns a POST verb. body may be nil.
func Post(body capability.Capability) Verb { return Verb{Method: http.MethodPost, Body: body} }

// Put returns a PUT verb. body may be nil.
func Put(body capability.Capability) Verb { return Verb{Method: http.MethodPut, Body: body} }

// Patch returns a PATCH verb. body may be nil.
func Patch(body capability.Capability) Verb { return Verb{Method: http.MethodPatch, Body: body} }

// Delete returns a DELETE verb. body may be nil.
func Delete(body capability.Capability) Verb { return Verb{Method: http.MethodDelete, Body: body} }

// takesBody reports whether the method may carry a body.
func (v Verb) takesBody() bool {
	switch v.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Always returns a verb selector that ignores the call context.
func Always[C any](v Verb) func(context.Context, *C) (Verb, error) {
	return func(context.Context, *C) (Verb, error) { return v, nil }
}
