package request

import (
	"bytes"
	"io"
)

// body is the payload of a request. Byte bodies can be replayed; stream
// bodies can be read exactly once.
type body struct {
	data   []byte
	stream io.Reader
}

func (b *body) clonable() bool { return b == nil || b.stream == nil }

func (b *body) reader() io.Reader {
	if b == nil {
		return nil
	}
	if b.stream != nil {
		return b.stream
	}
	return bytes.NewReader(b.data)
}
