package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/apikit/format"
	"github.com/kbukum/apikit/request"
	"github.com/kbukum/apikit/resource"
)

// Content types set by the body capabilities.
const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeJSON = "application/json"
	ContentTypeYAML = "application/yaml"
	ContentTypeCBOR = "application/cbor"
)

// Text resolves f and sends the result as a text body.
func Text(f *format.String, reg *resource.Registry) Capability {
	return New("body:text", func(ctx context.Context, b *request.Builder) error {
		v, err := f.Resolve(ctx, reg)
		if err != nil {
			return err
		}
		b.BodyString(v).ContentType(ContentTypeText)
		return nil
	})
}

// JSON encodes v as the request body.
func JSON(v any) Capability {
	return encoded("body:json", ContentTypeJSON, v, json.Marshal)
}

// YAML encodes v as the request body.
func YAML(v any) Capability {
	return encoded("body:yaml", ContentTypeYAML, v, yaml.Marshal)
}

// CBOR encodes v as the request body.
func CBOR(v any) Capability {
	return encoded("body:cbor", ContentTypeCBOR, v, cbor.Marshal)
}

func encoded(name, contentType string, v any, marshal func(any) ([]byte, error)) Capability {
	return New(name, func(_ context.Context, b *request.Builder) error {
		data, err := marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", contentType, err)
		}
		b.Body(data).ContentType(contentType)
		return nil
	})
}

// Raw sends data as-is. An empty contentType leaves the header untouched.
func Raw(contentType string, data []byte) Capability {
	return New("body:raw", func(_ context.Context, b *request.Builder) error {
		b.Body(data)
		if contentType != "" {
			b.ContentType(contentType)
		}
		return nil
	})
}

// Stream sends r as a one-shot body. Requests built with it cannot be retried.
func Stream(contentType string, r io.Reader) Capability {
	return New("body:stream", func(_ context.Context, b *request.Builder) error {
		b.BodyStream(r)
		if contentType != "" {
			b.ContentType(contentType)
		}
		return nil
	})
}

// Part is one field of a multipart/form-data body. A part with a FileName is
// sent as a file.
type Part struct {
	Name        string
	FileName    string
	ContentType string
	// Value is resolved against the registry for plain fields.
	Value *format.String
	// Data is the file content.
	Data []byte
}

// Multipart encodes parts as a multipart/form-data body.
func Multipart(reg *resource.Registry, parts ...Part) Capability {
	return New("body:multipart", func(ctx context.Context, b *request.Builder) error {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, p := range parts {
			if err := writePart(ctx, w, p, reg); err != nil {
				return fmt.Errorf("multipart field %q: %w", p.Name, err)
			}
		}
		if err := w.Close(); err != nil {
			return err
		}
		b.Body(buf.Bytes()).ContentType(w.FormDataContentType())
		return nil
	})
}

func writePart(ctx context.Context, w *multipart.Writer, p Part, reg *resource.Registry) error {
	if p.FileName == "" {
		var v string
		if p.Value != nil {
			var err error
			if v, err = p.Value.Resolve(ctx, reg); err != nil {
				return err
			}
		}
		return w.WriteField(p.Name, v)
	}

	var (
		part io.Writer
		err  error
	)
	if p.ContentType != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(p.Name)+`"; filename="`+escapeQuotes(p.FileName)+`"`)
		header.Set("Content-Type", p.ContentType)
		part, err = w.CreatePart(header)
	} else {
		part, err = w.CreateFormFile(p.Name, p.FileName)
	}
	if err != nil {
		return err
	}
	_, err = part.Write(p.Data)
	return err
}

func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, c := range []byte(s) {
		if c == '"' || c == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	return buf.String()
}
