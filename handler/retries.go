package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/request"
	"github.com/kbukum/apikit/resilience"
)

// ErrInvalidAttempts is returned by NewRetries for an attempt count below one.
var ErrInvalidAttempts = errors.New("retries: attempts must be at least 1")

// RetriesError reports that every attempt failed. Err is the last attempt's
// error; earlier errors are discarded.
type RetriesError struct {
	Attempts int
	Err      error
}

func (e *RetriesError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetriesError) Unwrap() error { return e.Err }

// RetryOption configures Retries.
type RetryOption func(*Retries)

// WithBackoff waits between attempts. Without it retries are immediate.
func WithBackoff(b resilience.Backoff) RetryOption {
	return func(r *Retries) { r.backoff = &b }
}

// WithRetryIf limits retries to errors for which fn returns true. Without it
// every error is retried.
func WithRetryIf(fn func(error) bool) RetryOption {
	return func(r *Retries) { r.retryIf = fn }
}

// WithOnRetry registers a callback invoked before each retry with the
// upcoming attempt number (starting at 2) and the previous error.
func WithOnRetry(fn func(req *request.Request, attempt int, err error)) RetryOption {
	return func(r *Retries) { r.onRetry = fn }
}

// WithRetryLogger logs retries through log.
func WithRetryLogger(log *logger.Logger) RetryOption {
	return func(r *Retries) { r.log = log }
}

// Retries re-executes the inner handler until it succeeds or the attempt
// budget is spent. Attempts run strictly one after another; each works on a
// fresh clone of the request.
type Retries struct {
	inner    Handler
	attempts int
	backoff  *resilience.Backoff
	retryIf  func(error) bool
	onRetry  func(*request.Request, int, error)
	log      *logger.Logger
}

// NewRetries wraps inner with a budget of attempts executions in total.
func NewRetries(inner Handler, attempts int, opts ...RetryOption) (*Retries, error) {
	if attempts < 1 {
		return nil, ErrInvalidAttempts
	}
	r := &Retries{inner: inner, attempts: attempts}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get("handler.retries")
	}
	return r, nil
}

// RetriesOf returns a decorator for use with Wrap. It panics if attempts is
// below one.
func RetriesOf(attempts int, opts ...RetryOption) Decorator {
	if attempts < 1 {
		panic(ErrInvalidAttempts)
	}
	return func(inner Handler) Handler {
		r, _ := NewRetries(inner, attempts, opts...)
		return r
	}
}

// Attempts returns the attempt budget.
func (r *Retries) Attempts() int { return r.attempts }

// Execute runs the inner handler up to Attempts times. A request that cannot
// be cloned fails with CLONE_FAILED before the inner handler is invoked.
// Exhaustion yields a HANDLER_FAILED error wrapping *RetriesError.
func (r *Retries) Execute(ctx context.Context, req *request.Request) (*http.Response, error) {
	if r.attempts == 1 {
		return r.inner.Execute(ctx, req)
	}

	var (
		last    error
		attempt int
	)
	for attempt = 1; attempt <= r.attempts; attempt++ {
		clone, err := req.TryClone()
		if err != nil {
			return nil, err
		}

		resp, err := r.inner.Execute(ctx, clone)
		if err == nil {
			return resp, nil
		}
		last = err

		if attempt == r.attempts || ctx.Err() != nil {
			break
		}
		if r.retryIf != nil && !r.retryIf(err) {
			break
		}

		r.log.Warn("retrying request", logger.MergeWithError(logger.Fields(
			logger.FieldMethod, req.Method(),
			logger.FieldURL, req.URL().Redacted(),
			logger.FieldAttempt, attempt+1,
			logger.FieldAttempts, r.attempts,
		), err))
		if r.onRetry != nil {
			r.onRetry(req, attempt+1, err)
		}
		if r.backoff != nil {
			if err := resilience.Sleep(ctx, r.backoff.Delay(attempt)); err != nil {
				break
			}
		}
	}

	return nil, apierrors.Wrap(apierrors.KindHandlerFailed, "retries exhausted", &RetriesError{Attempts: attempt, Err: last}).
		WithOp("handler.retries").
		WithDetail("attempts", attempt)
}
