package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apierrors "github.com/kbukum/apikit/errors"
)

// Processor is one process/refine pair. Process turns the raw response into
// an intermediate value P and Refine combines P with the call context into
// the output O.
//
// A nil Process passes the raw response through, which requires P to be
// *http.Response. A nil Refine returns the processed value, which requires
// O to equal P.
type Processor[C, P, O any] struct {
	Process func(ctx context.Context, resp *http.Response) (P, error)
	Refine  func(ctx context.Context, processed P, call *C) (O, error)
}

// Raw returns the response untouched. The caller owns the body.
func Raw[C any]() Processor[C, *http.Response, *http.Response] {
	return Processor[C, *http.Response, *http.Response]{}
}

// Text reads the full body as text, failing on a non-2xx status.
func Text[C any]() Processor[C, string, string] {
	return Processor[C, string, string]{Process: ReadText}
}

// Bytes reads the full body, failing on a non-2xx status.
func Bytes[C any]() Processor[C, []byte, []byte] {
	return Processor[C, []byte, []byte]{Process: ReadBytes}
}

// JSON decodes a JSON body into T, failing on a non-2xx status.
func JSON[C, T any]() Processor[C, T, T] {
	return Processor[C, T, T]{Process: DecodeJSON[T]}
}

// JSONRefined decodes a JSON body into T, then refines it with fn.
func JSONRefined[C, T, O any](fn func(ctx context.Context, v T, call *C) (O, error)) Processor[C, T, O] {
	return Processor[C, T, O]{Process: DecodeJSON[T], Refine: fn}
}

// ReadBytes reads and closes the body.
func ReadBytes(_ context.Context, resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindProcessFailed, "read response body", err).
			WithOp("endpoint.process")
	}
	if err := checkStatus(resp, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadText reads and closes the body as a string.
func ReadText(ctx context.Context, resp *http.Response) (string, error) {
	data, err := ReadBytes(ctx, resp)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeJSON reads and closes the body and unmarshals it into T.
func DecodeJSON[T any](ctx context.Context, resp *http.Response) (T, error) {
	var v T
	data, err := ReadBytes(ctx, resp)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, apierrors.Wrap(apierrors.KindProcessFailed, "decode JSON response", err).
			WithOp("endpoint.process")
	}
	return v, nil
}

const maxErrorBody = 4 << 10

func checkStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return apierrors.New(apierrors.KindProcessFailed, fmt.Sprintf("unexpected status %s", resp.Status)).
		WithOp("endpoint.process").
		WithDetail("status_code", resp.StatusCode).
		WithDetail("body", string(body))
}
