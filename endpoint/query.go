package endpoint

import (
	"net/url"
	"strings"
)

// QueryParam is a query pair; KeyOnly params are written without "=".
type QueryParam struct {
	Key     string
	Value   string
	KeyOnly bool
}

// KV returns a key=value query parameter.
func KV(key, value string) QueryParam { return QueryParam{Key: key, Value: value} }

// Flag returns a key-only query parameter.
func Flag(key string) QueryParam { return QueryParam{Key: key, KeyOnly: true} }

// AppendQuery appends params to u's query, keeping existing pairs.
func AppendQuery(u *url.URL, params ...QueryParam) {
	if len(params) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, p := range params {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		if !p.KeyOnly {
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(p.Value))
		}
	}
	u.RawQuery = b.String()
}

// QueryFrom builds a ModifyURL step that appends the params returned by fn.
func QueryFrom[C any](fn func(*C) []QueryParam) func(*url.URL, *C) error {
	return func(u *url.URL, call *C) error {
		AppendQuery(u, fn(call)...)
		return nil
	}
}
