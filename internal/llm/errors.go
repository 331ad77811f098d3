package llm

import (
	"context"
	"errors"
	"fmt"
)

// APICallError wraps a failed provider call.
type APICallError struct {
	Provider Provider
	Model    string
	Cause    error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("%s call to %s failed: %v", e.Provider, e.Model, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// EmptyResponseError is returned when the provider answered without any text.
type EmptyResponseError struct {
	Reason string
}

func (e *EmptyResponseError) Error() string {
	return e.Reason
}

// IsRetryable reports whether err is worth another attempt. Cancellation by
// the caller is final; deadline and provider failures are retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APICallError
	var emptyErr *EmptyResponseError
	return errors.As(err, &apiErr) || errors.As(err, &emptyErr) || errors.Is(err, context.DeadlineExceeded)
}
