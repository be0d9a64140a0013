package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/request"
	"github.com/kbukum/apikit/resilience"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport returns the base handler: it waits for a permit from gate, then
// sends the request with doer. Every physical send, including each retry,
// passes through the gate. A nil gate never waits.
func Transport(doer Doer, gate resilience.Gate) Handler {
	if gate == nil {
		gate = resilience.Unlimited()
	}
	return Func(func(ctx context.Context, req *request.Request) (*http.Response, error) {
		if err := gate.Acquire(ctx); err != nil {
			return nil, apierrors.Wrap(apierrors.KindRateLimited, "waiting for send permit", err).WithOp("handler.transport")
		}

		cancel := context.CancelFunc(func() {})
		if d := req.Timeout(); d > 0 {
			ctx, cancel = context.WithTimeout(ctx, d)
		}

		hr, err := req.HTTP(ctx)
		if err != nil {
			cancel()
			return nil, err
		}
		resp, err := doer.Do(hr)
		if err != nil {
			cancel()
			wrapped := apierrors.Wrap(apierrors.KindTransportFailed, "send failed", err).
				WithOp("handler.transport").
				WithDetail("url", hr.URL.Redacted())
			if errors.Is(err, context.Canceled) {
				wrapped.Retryable = false
			}
			return nil, wrapped
		}
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	})
}

// cancelOnClose ties a per-send timeout context to the response body.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
