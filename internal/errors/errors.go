// Package errors defines the typed errors returned across the zeroconf client.
//
// Each failure class maps to one type so callers can branch with errors.As:
//
//   - WireFormatError: a datagram could not be decoded (RFC 1035 §4.1)
//   - ValidationError: configuration or input rejected before any network I/O
//   - NetworkError: a socket operation failed on one adapter
//   - CancelledError: the caller's context ended the operation
package errors

import (
	"context"
	"errors"
	"fmt"
)

// WireFormatError reports malformed DNS message bytes.
//
// Offset is the byte position where parsing stopped. Decoding is
// all-or-nothing, so a WireFormatError never accompanies partial results.
type WireFormatError struct {
	Operation string // e.g. "parse name", "parse header"
	Offset    int
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *WireFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wire format error: %s at offset %d: %s: %v", e.Operation, e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("wire format error: %s at offset %d: %s", e.Operation, e.Offset, e.Message)
}

// Unwrap returns the underlying cause.
func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ValidationError reports invalid configuration or input.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error: %s %q: %s", e.Field, fmt.Sprint(e.Value), e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NetworkError reports a failed socket operation.
//
// Adapter names the interface the operation ran on; it is empty for
// operations that are not bound to a single adapter.
type NetworkError struct {
	Operation string
	Adapter   string
	Err       error
	Details   string
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	msg := "network error: " + e.Operation
	if e.Adapter != "" {
		msg += " on " + e.Adapter
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// CancelledError reports that an operation was aborted by its context.
//
// It unwraps to context.Canceled or context.DeadlineExceeded so both
// errors.Is(err, context.Canceled) and errors.As(err, &*CancelledError)
// work. It is never returned together with a partial result.
type CancelledError struct {
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *CancelledError) Error() string {
	return fmt.Sprintf("%s cancelled: %v", e.Operation, e.Err)
}

// Unwrap returns the context error.
func (e *CancelledError) Unwrap() error {
	return e.Err
}

// Cancelled wraps a context error for operation. A nil err falls back to
// context.Canceled.
func Cancelled(operation string, err error) *CancelledError {
	if err == nil {
		err = context.Canceled
	}
	return &CancelledError{Operation: operation, Err: err}
}

// IsCancelled reports whether err is a CancelledError or a raw context error.
func IsCancelled(err error) bool {
	var ce *CancelledError
	if errors.As(err, &ce) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
