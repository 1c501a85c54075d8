package errors

import (
	"context"
	stderrors "errors"
)

// Code extracts the error code from an error chain, returning Unknown for
// nil or foreign errors.
func Code(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code()
	}
	return Unknown
}

// CheckContext returns an error if the context is canceled or timed out.
// This provides a standardized way to check and wrap context errors.
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return Wrap(err, Canceled, operation+" canceled")
	}
	return nil
}
