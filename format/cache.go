package format

import "sync"

var cache sync.Map // string -> *String

// Cached parses raw once per process and returns the shared result.
// Parse failures are not cached.
func Cached(raw string) (*String, error) {
	if v, ok := cache.Load(raw); ok {
		return v.(*String), nil
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	v, _ := cache.LoadOrStore(raw, s)
	return v.(*String), nil
}
