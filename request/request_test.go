package request

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	apierrors "github.com/kbukum/apikit/errors"
)

func TestBuilder_Build(t *testing.T) {
	req, err := NewBuilder("post", "https://api.example.com/v1/items?a=1").
		Header("X-Trace", "abc").
		Query("b", "2").
		BearerAuth("tok").
		ContentType("application/json").
		BodyString(`{"k":"v"}`).
		Timeout(3 * time.Second).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method() != http.MethodPost {
		t.Errorf("expected POST, got %s", req.Method())
	}
	if got := req.URL().Query(); got.Get("a") != "1" || got.Get("b") != "2" {
		t.Errorf("expected merged query, got %v", got)
	}
	if req.Header().Get("Authorization") != "Bearer tok" {
		t.Errorf("unexpected auth header %q", req.Header().Get("Authorization"))
	}
	if string(req.Body()) != `{"k":"v"}` {
		t.Errorf("unexpected body %q", req.Body())
	}
	if req.Timeout() != 3*time.Second {
		t.Errorf("unexpected timeout %s", req.Timeout())
	}
}

func TestBuilder_BasicAuth(t *testing.T) {
	req, err := NewBuilder(http.MethodGet, "https://example.com").BasicAuth("user", "pass").Build()
	if err != nil {
		t.Fatal(err)
	}
	hr, err := req.HTTP(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	u, p, ok := hr.BasicAuth()
	if !ok || u != "user" || p != "pass" {
		t.Errorf("unexpected basic auth %q %q %v", u, p, ok)
	}
}

func TestBuilder_BuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Builder
	}{
		{"bad url", func() *Builder { return NewBuilder("GET", "http://[::1") }},
		{"relative url", func() *Builder { return NewBuilder("GET", "/only/path") }},
		{"bad method", func() *Builder { return NewBuilder("GE T", "https://example.com") }},
		{"bad header name", func() *Builder { return NewBuilder("GET", "https://example.com").Header("Bad Name", "v") }},
		{"bad header value", func() *Builder { return NewBuilder("GET", "https://example.com").Header("X-A", "line\nbreak") }},
		{"negative timeout", func() *Builder { return NewBuilder("GET", "https://example.com").Timeout(-time.Second) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !apierrors.Is(err, apierrors.KindBuildFailed) {
				t.Errorf("expected BUILD_FAILED, got %v", err)
			}
		})
	}
}

func TestRequest_IsImmutable(t *testing.T) {
	b := NewBuilder("GET", "https://example.com/a").Header("X-A", "1")
	req, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	b.SetHeader("X-A", "2")
	b.URL().Path = "/changed"
	req.Header().Set("X-A", "3")
	req.URL().Path = "/changed"

	if req.Header().Get("X-A") != "1" {
		t.Errorf("expected header to stay 1, got %q", req.Header().Get("X-A"))
	}
	if req.URL().Path != "/a" {
		t.Errorf("expected path to stay /a, got %q", req.URL().Path)
	}
}

func TestRequest_TryClone(t *testing.T) {
	req, _ := NewBuilder("PUT", "https://example.com").BodyString("payload").Build()
	clone, err := req.TryClone()
	if err != nil {
		t.Fatal(err)
	}
	if clone == req {
		t.Error("expected a distinct request")
	}
	for i := 0; i < 2; i++ {
		hr, err := clone.HTTP(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(hr.Body)
		if string(data) != "payload" {
			t.Errorf("send %d: expected payload, got %q", i, data)
		}
	}
}

func TestRequest_StreamNotClonable(t *testing.T) {
	req, err := NewBuilder("POST", "https://example.com").BodyStream(strings.NewReader("once")).Build()
	if err != nil {
		t.Fatal(err)
	}
	if req.Clonable() {
		t.Error("stream request must not be clonable")
	}
	_, err = req.TryClone()
	if !errors.Is(err, ErrNotClonable) {
		t.Errorf("expected ErrNotClonable, got %v", err)
	}
	if !apierrors.Is(err, apierrors.KindCloneFailed) {
		t.Errorf("expected CLONE_FAILED, got %v", err)
	}

	if _, err := req.HTTP(context.Background()); err != nil {
		t.Fatalf("first conversion should succeed: %v", err)
	}
	if _, err := req.HTTP(context.Background()); err == nil {
		t.Error("expected second conversion of a stream body to fail")
	}
}

func TestRequest_NoBody(t *testing.T) {
	req, _ := NewBuilder("GET", "https://example.com").Build()
	if req.Body() != nil {
		t.Error("expected nil body")
	}
	hr, err := req.HTTP(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if hr.Body != nil && hr.Body != http.NoBody {
		t.Error("expected no http body")
	}
}
