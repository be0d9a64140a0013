package request

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	apierrors "github.com/kbukum/apikit/errors"
)

// ErrNotClonable is the cause of the CLONE_FAILED error returned by TryClone
// for requests whose body is a stream.
var ErrNotClonable = errors.New("request body is a stream and cannot be cloned")

// Request is a built, immutable request.
type Request struct {
	method  string
	url     *url.URL
	header  http.Header
	body    *body
	timeout time.Duration
	used    atomic.Bool
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// URL returns a copy of the target URL.
func (r *Request) URL() *url.URL {
	u := *r.url
	return &u
}

// Header returns a copy of the request headers.
func (r *Request) Header() http.Header { return r.header.Clone() }

// Body returns a copy of a replayable body, or nil for no body or a stream.
func (r *Request) Body() []byte {
	if r.body == nil || r.body.stream != nil {
		return nil
	}
	return append([]byte(nil), r.body.data...)
}

// Timeout returns the per-send timeout, zero if unbounded.
func (r *Request) Timeout() time.Duration { return r.timeout }

// Clonable reports whether TryClone can succeed.
func (r *Request) Clonable() bool { return r.body.clonable() }

// TryClone returns an independent copy of the request. It fails with
// CLONE_FAILED when the body is a stream.
func (r *Request) TryClone() (*Request, error) {
	if !r.Clonable() {
		return nil, apierrors.Wrap(apierrors.KindCloneFailed, "cannot clone request", ErrNotClonable).WithOp("request.clone")
	}
	u := *r.url
	return &Request{
		method:  r.method,
		url:     &u,
		header:  r.header.Clone(),
		body:    r.body,
		timeout: r.timeout,
	}, nil
}

// HTTP converts the request into a *http.Request bound to ctx. A request with
// a stream body may be converted only once.
func (r *Request) HTTP(ctx context.Context) (*http.Request, error) {
	if !r.Clonable() && !r.used.CompareAndSwap(false, true) {
		return nil, apierrors.New(apierrors.KindBuildFailed, "stream body already consumed").WithOp("request.http")
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url.String(), r.body.reader())
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindBuildFailed, "cannot create http request", err).WithOp("request.http")
	}
	req.Header = r.header.Clone()
	return req, nil
}
