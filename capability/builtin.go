package capability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/apikit/format"
	"github.com/kbukum/apikit/request"
	"github.com/kbukum/apikit/resource"
	"github.com/kbukum/apikit/version"
)

// Header sets a fixed header value.
func Header(key, value string) Capability {
	return New("header:"+key, func(_ context.Context, b *request.Builder) error {
		b.SetHeader(key, value)
		return nil
	})
}

// HeaderFormat sets a header to the resolved value of f.
func HeaderFormat(key string, f *format.String, reg *resource.Registry) Capability {
	return New("header:"+key, func(ctx context.Context, b *request.Builder) error {
		v, err := f.Resolve(ctx, reg)
		if err != nil {
			return err
		}
		b.SetHeader(key, v)
		return nil
	})
}

// Query appends a query parameter with the resolved value of f.
func Query(key string, f *format.String, reg *resource.Registry) Capability {
	return New("query:"+key, func(ctx context.Context, b *request.Builder) error {
		v, err := f.Resolve(ctx, reg)
		if err != nil {
			return err
		}
		b.Query(key, v)
		return nil
	})
}

// BearerToken sets a bearer Authorization header from the resolved token.
func BearerToken(token *format.String, reg *resource.Registry) Capability {
	return New("bearer", func(ctx context.Context, b *request.Builder) error {
		v, err := token.Resolve(ctx, reg)
		if err != nil {
			return err
		}
		b.BearerAuth(v)
		return nil
	})
}

// BasicAuth sets HTTP basic credentials from the resolved username and password.
func BasicAuth(username, password *format.String, reg *resource.Registry) Capability {
	return New("basic", func(ctx context.Context, b *request.Builder) error {
		user, err := username.Resolve(ctx, reg)
		if err != nil {
			return err
		}
		pass, err := password.Resolve(ctx, reg)
		if err != nil {
			return err
		}
		b.BasicAuth(user, pass)
		return nil
	})
}

// KeyLocation says where an API key is placed.
type KeyLocation int

const (
	// InHeader places the key in a request header.
	InHeader KeyLocation = iota
	// InQuery places the key in a query parameter.
	InQuery
)

// DefaultAPIKeyName is used when APIKey is given an empty name.
const DefaultAPIKeyName = "X-API-Key"

// APIKey places the resolved key in a header or query parameter.
func APIKey(name string, in KeyLocation, key *format.String, reg *resource.Registry) Capability {
	if name == "" {
		name = DefaultAPIKeyName
	}
	return New("apikey", func(ctx context.Context, b *request.Builder) error {
		v, err := key.Resolve(ctx, reg)
		if err != nil {
			return err
		}
		if in == InQuery {
			b.Query(name, v)
		} else {
			b.SetHeader(name, v)
		}
		return nil
	})
}

// Timeout bounds each send of the request.
func Timeout(d time.Duration) Capability {
	return New("timeout", func(_ context.Context, b *request.Builder) error {
		b.Timeout(d)
		return b.Err()
	})
}

// DefaultRequestIDHeader is the header written by RequestID.
const DefaultRequestIDHeader = "X-Request-ID"

// RequestID sets a fresh UUID on each built request unless the header is
// already present.
func RequestID(header string) Capability {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return New("request_id", func(_ context.Context, b *request.Builder) error {
		if b.Headers().Get(header) == "" {
			b.SetHeader(header, uuid.NewString())
		}
		return nil
	})
}

// UserAgent sets the User-Agent header to "product apikit/version".
func UserAgent(product string) Capability {
	return Header("User-Agent", version.UserAgent(product))
}
