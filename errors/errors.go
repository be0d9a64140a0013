package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the structured error returned by apikit packages.
type Error struct {
	// Kind classifies the failure.
	Kind Kind `json:"kind"`
	// Op names the operation that failed (e.g. "format.resolve").
	Op string `json:"op,omitempty"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// Retryable indicates whether repeating the operation may succeed.
	Retryable bool `json:"retryable"`
	// Details carries additional context such as a resource name or position.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix = e.Op + ": " + prefix
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithOp sets the failing operation and returns the receiver.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with automatic retryable detection.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Retryable: IsRetryableKind(kind),
	}
}

// Newf creates a new Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates a new Error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return New(kind, message).WithCause(cause)
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether any *Error in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// IsRetryable checks if an error is marked retryable.
func IsRetryable(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Retryable
}

// --- Common constructors ---

// ResourceNotFound creates an error for an unregistered resource identifier.
func ResourceNotFound(name string) *Error {
	return Newf(KindResourceNotFound, "no resource named %q", name).WithDetail("resource", name)
}

// CapabilityFailed creates an error for a failed capability.
func CapabilityFailed(name string, cause error) *Error {
	return New(KindCapabilityFailed, fmt.Sprintf("capability %s failed", name)).
		WithDetail("capability", name).
		WithCause(cause)
}

// BuildFailed creates an error for an invalid request.
func BuildFailed(reason string) *Error {
	return New(KindBuildFailed, reason)
}

// InvalidConfig creates an error for an invalid configuration value.
func InvalidConfig(field, reason string) *Error {
	return Newf(KindInvalidConfig, "%s: %s", field, reason).WithDetail("field", field)
}
