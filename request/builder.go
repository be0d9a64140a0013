package request

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	apierrors "github.com/kbukum/apikit/errors"
)

// Builder accumulates request state. It is not safe for concurrent use.
type Builder struct {
	method  string
	url     *url.URL
	header  http.Header
	query   url.Values
	body    *body
	timeout time.Duration
	err     error
}

// NewBuilder starts a request for method and rawURL. A parse failure is
// reported by Build.
func NewBuilder(method, rawURL string) *Builder {
	b := &Builder{method: strings.ToUpper(method), header: make(http.Header), query: make(url.Values)}
	u, err := url.Parse(rawURL)
	if err != nil {
		b.fail(apierrors.Wrap(apierrors.KindBuildFailed, "invalid url", err))
		u = &url.URL{}
	}
	b.url = u
	return b
}

// FromURL starts a request for method and a copy of u.
func FromURL(method string, u *url.URL) *Builder {
	cp := *u
	return &Builder{method: strings.ToUpper(method), url: &cp, header: make(http.Header), query: make(url.Values)}
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Method returns the HTTP method.
func (b *Builder) Method() string { return b.method }

// URL returns the target URL. Changes to it are visible to Build.
func (b *Builder) URL() *url.URL { return b.url }

// Headers returns the accumulated header map. Changes to it are visible to Build.
func (b *Builder) Headers() http.Header { return b.header }

// Err returns the first error recorded by the builder, if any.
func (b *Builder) Err() error { return b.err }

// Header appends a header value.
func (b *Builder) Header(key, value string) *Builder {
	b.header.Add(key, value)
	return b
}

// SetHeader replaces any existing values for key.
func (b *Builder) SetHeader(key, value string) *Builder {
	b.header.Set(key, value)
	return b
}

// Query appends a query parameter. Parameters are merged into the URL by Build.
func (b *Builder) Query(key, value string) *Builder {
	b.query.Add(key, value)
	return b
}

// BasicAuth sets the Authorization header for HTTP basic auth.
func (b *Builder) BasicAuth(username, password string) *Builder {
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return b.SetHeader("Authorization", "Basic "+token)
}

// BearerAuth sets the Authorization header to a bearer token.
func (b *Builder) BearerAuth(token string) *Builder {
	return b.SetHeader("Authorization", "Bearer "+token)
}

// Timeout bounds a single send of the built request. Zero means no bound.
func (b *Builder) Timeout(d time.Duration) *Builder {
	if d < 0 {
		b.fail(apierrors.BuildFailed(fmt.Sprintf("negative timeout %s", d)))
		return b
	}
	b.timeout = d
	return b
}

// Body sets a replayable body. The slice must not be modified afterwards.
func (b *Builder) Body(data []byte) *Builder {
	b.body = &body{data: data}
	return b
}

// BodyString sets a replayable text body.
func (b *Builder) BodyString(s string) *Builder {
	return b.Body([]byte(s))
}

// BodyStream sets a body that is read once while sending. Requests with a
// stream body cannot be cloned and therefore cannot be retried.
func (b *Builder) BodyStream(r io.Reader) *Builder {
	b.body = &body{stream: r}
	return b
}

// HasBody reports whether a body has been set.
func (b *Builder) HasBody() bool { return b.body != nil }

// ContentType sets the Content-Type header.
func (b *Builder) ContentType(ct string) *Builder {
	return b.SetHeader("Content-Type", ct)
}

// Build validates the accumulated state and returns an immutable Request.
func (b *Builder) Build() (*Request, error) {
	if b.err != nil {
		return nil, withBuildOp(b.err)
	}
	if !validMethod(b.method) {
		return nil, apierrors.BuildFailed(fmt.Sprintf("invalid method %q", b.method)).WithOp("request.build")
	}
	if b.url.Scheme == "" || b.url.Host == "" {
		return nil, apierrors.BuildFailed(fmt.Sprintf("url %q is not absolute", b.url.String())).WithOp("request.build")
	}
	for key, values := range b.header {
		if !httpguts.ValidHeaderFieldName(key) {
			return nil, apierrors.BuildFailed(fmt.Sprintf("invalid header name %q", key)).WithOp("request.build")
		}
		for _, v := range values {
			if !httpguts.ValidHeaderFieldValue(v) {
				return nil, apierrors.BuildFailed(fmt.Sprintf("invalid value for header %q", key)).
					WithOp("request.build").
					WithDetail("header", key)
			}
		}
	}

	u := *b.url
	if len(b.query) > 0 {
		q := u.Query()
		for k, vs := range b.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	return &Request{
		method:  b.method,
		url:     &u,
		header:  b.header.Clone(),
		body:    b.body,
		timeout: b.timeout,
	}, nil
}

func validMethod(m string) bool {
	if m == "" {
		return false
	}
	return strings.IndexFunc(m, func(r rune) bool { return !httpguts.IsTokenRune(r) }) < 0
}

func withBuildOp(err error) error {
	if e, ok := err.(*apierrors.Error); ok && e.Op == "" {
		return e.WithOp("request.build")
	}
	return err
}
