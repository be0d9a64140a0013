package format

import (
	"context"
	"strings"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/resource"
)

// SegmentKind distinguishes literal text from placeholders.
type SegmentKind int

const (
	// Literal is text copied verbatim.
	Literal SegmentKind = iota
	// Placeholder names a resource whose value is substituted.
	Placeholder
)

func (k SegmentKind) String() string {
	if k == Placeholder {
		return "placeholder"
	}
	return "literal"
}

// Segment is one piece of a parsed format string. For placeholders Text is
// the resource name with escapes already removed.
type Segment struct {
	Kind SegmentKind
	Text string
}

// String is a parsed format string. It is immutable and safe for concurrent use.
type String struct {
	segments []Segment
}

// Parse splits raw into literal and placeholder segments.
// Malformed input yields a TEMPLATE_SYNTAX error wrapping a *SyntaxError.
func Parse(raw string) (*String, error) {
	var (
		segments    []Segment
		buf         strings.Builder
		inside      bool
		placeholder int
	)

	fail := func(offset int, err error) (*String, error) {
		syn := &SyntaxError{Input: raw, Offset: offset, Err: err}
		return nil, apierrors.Wrap(apierrors.KindTemplateSyntax, "invalid format string", syn).
			WithOp("format.parse").
			WithDetail("offset", offset)
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		doubled := i+1 < len(raw) && raw[i+1] == c

		switch {
		case c == '<' && doubled, c == '>' && doubled:
			buf.WriteByte(c)
			i++
		case c == '<' && !inside:
			if buf.Len() > 0 {
				segments = append(segments, Segment{Kind: Literal, Text: buf.String()})
				buf.Reset()
			}
			inside = true
			placeholder = i
		case c == '<':
			return fail(i, ErrLoneOpen)
		case c == '>' && inside:
			segments = append(segments, Segment{Kind: Placeholder, Text: buf.String()})
			buf.Reset()
			inside = false
		case c == '>':
			return fail(i, ErrUnpairedClose)
		default:
			buf.WriteByte(c)
		}
	}

	if inside {
		return fail(placeholder, ErrUnterminatedPlaceholder)
	}
	if buf.Len() > 0 {
		segments = append(segments, Segment{Kind: Literal, Text: buf.String()})
	}
	return &String{segments: segments}, nil
}

// MustParse is like Parse but panics on malformed input.
// It is intended for package-level endpoint definitions.
func MustParse(raw string) *String {
	s, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Segments returns a copy of the parsed segments in order.
func (s *String) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// Placeholders returns the referenced resource names in order of appearance.
func (s *String) Placeholders() []string {
	var names []string
	for _, seg := range s.segments {
		if seg.Kind == Placeholder {
			names = append(names, seg.Text)
		}
	}
	return names
}

// IsLiteral reports whether the string contains no placeholders.
func (s *String) IsLiteral() bool {
	for _, seg := range s.segments {
		if seg.Kind == Placeholder {
			return false
		}
	}
	return true
}

// String returns the source form with escapes restored. Parsing the result
// yields the same segments.
func (s *String) String() string {
	var b strings.Builder
	for _, seg := range s.segments {
		if seg.Kind == Placeholder {
			b.WriteByte('<')
			b.WriteString(escape(seg.Text))
			b.WriteByte('>')
			continue
		}
		b.WriteString(escape(seg.Text))
	}
	return b.String()
}

// Resolve expands every placeholder against reg. A nil reg uses
// resource.Default(). On failure no partial text is returned.
func (s *String) Resolve(ctx context.Context, reg *resource.Registry) (string, error) {
	if reg == nil {
		reg = resource.Default()
	}
	var b strings.Builder
	for _, seg := range s.segments {
		if seg.Kind == Literal {
			b.WriteString(seg.Text)
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		v, err := reg.Resolve(ctx, seg.Text)
		if err != nil {
			return "", err
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

var escaper = strings.NewReplacer("<", "<<", ">", ">>")

func escape(text string) string { return escaper.Replace(text) }
