package client

import (
	"context"
	"net/http"

	"github.com/kbukum/apikit/handler"
	"github.com/kbukum/apikit/request"
)

// Runner holds a request builder and the handler that will execute it.
type Runner struct {
	builder *request.Builder
	handler handler.Handler
}

// Wrap adds decorators around the runner's handler. The last one is outermost.
func (r *Runner) Wrap(decorators ...handler.Decorator) *Runner {
	return &Runner{builder: r.builder, handler: handler.Wrap(r.handler, decorators...)}
}

// Builder returns the pending request builder.
func (r *Runner) Builder() *request.Builder { return r.builder }

// Handler returns the handler the request will be sent through.
func (r *Runner) Handler() handler.Handler { return r.handler }

// Run builds the request and executes it. A build failure means nothing was
// sent.
func (r *Runner) Run(ctx context.Context) (*http.Response, error) {
	req, err := r.builder.Build()
	if err != nil {
		return nil, err
	}
	return r.handler.Execute(ctx, req)
}
