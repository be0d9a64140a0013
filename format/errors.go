package format

import (
	"errors"
	"fmt"
)

// Syntax errors returned (wrapped in *SyntaxError) by Parse.
var (
	ErrUnpairedClose           = errors.New("unpaired '>'")
	ErrLoneOpen                = errors.New("lone '<' inside placeholder, did you mean '<<'?")
	ErrUnterminatedPlaceholder = errors.New("unterminated placeholder")
)

// SyntaxError reports where a format string is malformed.
type SyntaxError struct {
	// Input is the raw text passed to Parse.
	Input string
	// Offset is the byte offset of the offending character.
	Offset int
	// Err is one of the Err* values above.
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d in %q", e.Err, e.Offset, e.Input)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
