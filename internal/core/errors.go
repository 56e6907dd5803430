package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every structural failure returned by the codec matches exactly
// one of these with errors.Is.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrIO                = errors.New("io failure")
)

// Error describes a failed codec operation.
type Error struct {
	Kind   error  // One of the Err* kinds above
	Op     string // Operation: "read", "write", "append", "open", ...
	Source string // Path, URL or stream name (may be empty)
	Err    error  // Underlying cause (may be nil)
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Source != "" {
		msg += " " + e.Source
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds an *Error. cause may be nil.
func NewError(kind error, op, source string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Source: source, Err: cause}
}

// InvalidArgument returns an ErrInvalidArgument error with a formatted reason.
func InvalidArgument(op, format string, args ...any) error {
	return &Error{Kind: ErrInvalidArgument, Op: op, Err: fmt.Errorf(format, args...)}
}

// NotFound returns an ErrNotFound error for source.
func NotFound(op, source string, cause error) error {
	return &Error{Kind: ErrNotFound, Op: op, Source: source, Err: cause}
}

// Unsupported returns an ErrUnsupportedFormat error for source.
func Unsupported(op, source string, cause error) error {
	return &Error{Kind: ErrUnsupportedFormat, Op: op, Source: source, Err: cause}
}

// IOFailure wraps an I/O fault. Errors that already carry a kind are returned
// unchanged so that a NotFound raised deep inside a read is not downgraded.
func IOFailure(op, source string, cause error) error {
	if cause == nil {
		return nil
	}
	var ce *Error
	if errors.As(cause, &ce) {
		return cause
	}
	return &Error{Kind: ErrIO, Op: op, Source: source, Err: cause}
}
