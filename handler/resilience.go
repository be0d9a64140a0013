package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/request"
	"github.com/kbukum/apikit/resilience"
)

// CircuitBreaker fails fast with CIRCUIT_OPEN while cb is open. Inner errors
// are recorded against the breaker.
func CircuitBreaker(cb *resilience.CircuitBreaker) Decorator {
	return func(inner Handler) Handler {
		return Func(func(ctx context.Context, req *request.Request) (*http.Response, error) {
			if !cb.Allow() {
				return nil, apierrors.Wrap(apierrors.KindCircuitOpen, "circuit "+cb.Name()+" is open", resilience.ErrCircuitOpen).
					WithOp("handler.circuit_breaker")
			}
			resp, err := inner.Execute(ctx, req)
			cb.Record(err)
			return resp, err
		})
	}
}

// Concurrency caps in-flight executions with bh.
func Concurrency(bh *resilience.Bulkhead) Decorator {
	return func(inner Handler) Handler {
		return Func(func(ctx context.Context, req *request.Request) (*http.Response, error) {
			release, err := bh.Acquire(ctx)
			if err != nil {
				return nil, apierrors.Wrap(apierrors.KindRateLimited, "no concurrency slot", err).WithOp("handler.concurrency")
			}
			defer release()
			return inner.Execute(ctx, req)
		})
	}
}

// Timeout bounds each inner execution, including reading the response body.
// Place it inside Retries to bound attempts individually, outside to bound
// the whole sequence.
func Timeout(d time.Duration) Decorator {
	return func(inner Handler) Handler {
		return Func(func(ctx context.Context, req *request.Request) (*http.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			resp, err := inner.Execute(ctx, req)
			if err != nil {
				cancel()
				return nil, err
			}
			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

// StatusError is the cause of an UNEXPECTED_STATUS error. Body holds the
// start of the rejected response body.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// ServerErrors matches 5xx responses and 429 Too Many Requests.
func ServerErrors(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

// NotSuccess matches every status outside 2xx.
func NotSuccess(status int) bool {
	return status < 200 || status > 299
}

const statusBodyLimit = 4 << 10

// RejectStatus turns responses whose status matches reject into errors, so
// decorators such as Retries and CircuitBreaker see them as failures. The
// rejected body is read (up to 4KiB) and closed.
func RejectStatus(reject func(status int) bool) Decorator {
	return func(inner Handler) Handler {
		return Func(func(ctx context.Context, req *request.Request) (*http.Response, error) {
			resp, err := inner.Execute(ctx, req)
			if err != nil || !reject(resp.StatusCode) {
				return resp, err
			}
			body, _ := io.ReadAll(io.LimitReader(resp.Body, statusBodyLimit))
			_ = resp.Body.Close()

			e := apierrors.Wrap(apierrors.KindUnexpectedStatus, "response rejected",
				&StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}).
				WithOp("handler.status").
				WithDetail("status", resp.StatusCode)
			e.Retryable = ServerErrors(resp.StatusCode)
			return nil, e
		})
	}
}

// StatusOf returns the HTTP status carried by a rejected-status error, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
