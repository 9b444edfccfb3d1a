package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure. Validation kinds are always
// resolved before any side-effecting call; network kinds tell the caller
// whether funds moved.
type ErrorKind string

const (
	KindInvalidFormat       ErrorKind = "invalid_format"
	KindUnsupportedCurrency ErrorKind = "unsupported_currency"
	KindUnknownTarget       ErrorKind = "unknown_target"
	KindInvalidAddress      ErrorKind = "invalid_address"
	KindInvalidAmount       ErrorKind = "invalid_amount"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindResolverUnavailable ErrorKind = "resolver_unavailable"
	KindDispatchFailed      ErrorKind = "dispatch_failed"
	KindRecordFailed        ErrorKind = "record_failed"
)

// PipelineError is a classified failure with a user-facing message.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	wrapped error
}

func (e *PipelineError) Error() string { return e.Message }

func (e *PipelineError) Unwrap() error { return e.wrapped }

// NewError builds a PipelineError with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a PipelineError that preserves the underlying cause for
// errors.Is/errors.As chains.
func WrapError(kind ErrorKind, err error, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Message: fmt.Sprintf(format, args...), wrapped: err}
}

// KindOf extracts the classification from err, or "" when err is not a
// PipelineError.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
