package endpoint

import (
	"context"
	"net/url"

	"github.com/kbukum/apikit/capability"
	"github.com/kbukum/apikit/client"
	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/format"
	"github.com/kbukum/apikit/handler"
)

// Record groups endpoints of one API under a shared base URL and a shared
// capability chain. BaseURL may contain placeholders.
type Record struct {
	Name         string
	BaseURL      string
	Capabilities capability.Chain
}

// Endpoint declares one API operation. C is the per-call context threaded
// through URL modification, verb selection, capabilities and refine steps.
//
// Only Path is required. A nil Verb means GET, a nil Record means Path must
// be an absolute URL template, and a nil Handler uses the client's default
// handler stack.
type Endpoint[C any] struct {
	Name   string
	Record *Record
	Path   string

	// Verb selects the method and optional body capability for a call.
	Verb func(ctx context.Context, call *C) (Verb, error)
	// Capabilities returns the endpoint-specific chain, applied after the
	// record's chain.
	Capabilities func(call *C) capability.Chain
	// ModifyURL adjusts the resolved URL, typically to add query parameters.
	ModifyURL func(u *url.URL, call *C) error
	// Handler derives the handler for a call from the client's default stack.
	Handler func(base handler.Handler, call *C) handler.Handler
}

// Template returns the raw URL template: the record base URL followed by the
// path.
func (e *Endpoint[C]) Template() string {
	if e.Record == nil {
		return e.Path
	}
	return e.Record.BaseURL + e.Path
}

// label names the endpoint in errors, logs and spans.
func (e *Endpoint[C]) label() string {
	name := e.Name
	if name == "" {
		name = e.Path
	}
	if e.Record != nil && e.Record.Name != "" {
		return e.Record.Name + "." + name
	}
	return name
}

// Prepare returns a Runner for one call. call is copied into the runner and
// may be mutated by the pipeline.
func (e *Endpoint[C]) Prepare(c *client.Client, call C) *Runner[C] {
	r := &Runner[C]{endpoint: e, client: c, call: &call}
	base := c.Handler()
	if e.Handler != nil {
		base = e.Handler(base, r.call)
	}
	r.handler = base
	return r
}

// resolveURL expands the URL template and applies ModifyURL.
func (e *Endpoint[C]) resolveURL(ctx context.Context, c *client.Client, call *C) (*url.URL, error) {
	tmpl, err := format.Cached(e.Template())
	if err != nil {
		return nil, err
	}
	raw, err := tmpl.Resolve(ctx, c.Registry())
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindBuildFailed, "invalid URL", err).
			WithOp("endpoint.url").WithDetail("url", raw)
	}
	if !u.IsAbs() {
		return nil, apierrors.New(apierrors.KindBuildFailed, "URL is not absolute").
			WithOp("endpoint.url").WithDetail("url", raw)
	}
	if e.ModifyURL != nil {
		if err := e.ModifyURL(u, call); err != nil {
			return nil, apierrors.Wrap(apierrors.KindBuildFailed, "modify URL", err).WithOp("endpoint.url")
		}
	}
	return u, nil
}

// chain assembles the capabilities for one call in application order: the
// verb body, then the record chain, then the endpoint chain.
func (e *Endpoint[C]) chain(verb Verb, call *C) capability.Chain {
	var body, record, own capability.Chain
	if verb.Body != nil {
		body = capability.Chain{verb.Body}
	}
	if e.Record != nil {
		record = e.Record.Capabilities
	}
	if e.Capabilities != nil {
		own = e.Capabilities(call)
	}
	return capability.Concat(body, record, own)
}
