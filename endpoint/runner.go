package endpoint

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apikit/client"
	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/handler"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/request"
)

// Runner executes one prepared endpoint call.
type Runner[C any] struct {
	endpoint *Endpoint[C]
	client   *client.Client
	call     *C
	handler  handler.Handler
}

// Wrap adds decorators around the runner's handler. The last one is
// outermost.
func (r *Runner[C]) Wrap(decorators ...handler.Decorator) *Runner[C] {
	return &Runner[C]{
		endpoint: r.endpoint,
		client:   r.client,
		call:     r.call,
		handler:  handler.Wrap(r.handler, decorators...),
	}
}

// Call returns the call context. Pipeline steps see and may mutate it.
func (r *Runner[C]) Call() *C { return r.call }

// Handler returns the handler the request will be sent through.
func (r *Runner[C]) Handler() handler.Handler { return r.handler }

// Build runs the build stage and returns the request that would be sent.
func (r *Runner[C]) Build(ctx context.Context) (*request.Request, error) {
	req, err := r.build(ctx)
	if err != nil {
		return nil, stageError(StageBuild, r.endpoint.label(), err)
	}
	return req, nil
}

func (r *Runner[C]) build(ctx context.Context) (*request.Request, error) {
	e := r.endpoint
	u, err := e.resolveURL(ctx, r.client, r.call)
	if err != nil {
		return nil, err
	}

	verb := Get()
	if e.Verb != nil {
		if verb, err = e.Verb(ctx, r.call); err != nil {
			return nil, apierrors.Wrap(apierrors.KindBuildFailed, "select verb", err).WithOp("endpoint.verb")
		}
	}
	if verb.Body != nil && !verb.takesBody() {
		return nil, apierrors.New(apierrors.KindBuildFailed, "method does not take a body").
			WithOp("endpoint.verb").
			WithDetail("method", verb.Method)
	}

	b := request.FromURL(verb.Method, u)
	r.client.ApplyDefaults(b)
	if err := e.chain(verb, r.call).Apply(ctx, b); err != nil {
		return nil, err
	}
	return b.Build()
}

// Response builds the request and sends it through the handler stack. The
// caller owns the response body.
func (r *Runner[C]) Response(ctx context.Context) (*http.Response, error) {
	req, err := r.Build(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := r.handler.Execute(ctx, req)
	if err != nil {
		return nil, stageError(StageHandler, r.endpoint.label(), err)
	}
	return resp, nil
}

// Call runs the full pipeline for a prepared runner: build, send, process
// the response, then refine the processed value with the call context.
func Call[C, P, O any](ctx context.Context, r *Runner[C], p Processor[C, P, O]) (O, error) {
	name := r.endpoint.label()
	start := time.Now()

	var span trace.Span
	if t := r.client.Tracer(); t != nil {
		ctx, span = t.Start(ctx, observability.SpanCall,
			trace.WithAttributes(attribute.String(observability.AttrEndpoint, name)))
	}

	out, err := run(ctx, r, p)

	outcome := "ok"
	if err != nil {
		outcome = string(StageOf(err))
		r.client.Logger().Debug("endpoint call failed", logger.MergeWithError(logger.Fields(
			"endpoint", name,
			"stage", outcome,
		), err))
	}
	if span != nil {
		if err != nil {
			span.SetAttributes(
				attribute.String(observability.AttrStage, outcome),
				attribute.String(observability.AttrErrorKind, string(apierrors.KindOf(err))),
			)
		}
		observability.EndSpan(span, err)
	}
	if m := r.client.Metrics(); m != nil {
		m.RecordCall(ctx, name, outcome, time.Since(start))
	}
	return out, err
}

func run[C, P, O any](ctx context.Context, r *Runner[C], p Processor[C, P, O]) (O, error) {
	var zero O
	resp, err := r.Response(ctx)
	if err != nil {
		return zero, err
	}
	name := r.endpoint.label()

	process := p.Process
	if process == nil {
		process = func(context.Context, *http.Response) (P, error) {
			var zp P
			if v, ok := any(resp).(P); ok {
				return v, nil
			}
			_ = resp.Body.Close()
			return zp, apierrors.New(apierrors.KindProcessFailed, "no process step for this output").
				WithOp("endpoint.process")
		}
	}
	processed, err := process(ctx, resp)
	if err != nil {
		return zero, postCallError(StageProcess, name, apierrors.KindProcessFailed, err)
	}

	if p.Refine == nil {
		if v, ok := any(processed).(O); ok {
			return v, nil
		}
		return zero, stageError(StageRefine, name,
			apierrors.New(apierrors.KindRefineFailed, "no refine step for this output").WithOp("endpoint.refine"))
	}
	out, err := p.Refine(ctx, processed, r.call)
	if err != nil {
		return zero, postCallError(StageRefine, name, apierrors.KindRefineFailed, err)
	}
	return out, nil
}
