package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider operations.
var (
	// ErrUnknownProvider indicates the requested provider is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnavailable indicates the provider service is unavailable.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrNetwork indicates the request failed at the transport level.
	ErrNetwork = errors.New("network error")

	// ErrTimeout indicates the request did not complete before the deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrInvalidRequest indicates the request is malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrCredentialsNotFound indicates the provider's API key is missing.
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrEmptyResponse indicates the provider returned no usable text.
	ErrEmptyResponse = errors.New("empty response")
)

// Error wraps provider errors with context.
type Error struct {
	Provider  string // Provider name ("openai", "anthropic", etc.)
	Model     string // Model attempted, if known
	Op        string // Operation that failed ("get_response", "list_models")
	Err       error  // Underlying error
	Retryable bool   // Whether the error is likely transient
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Provider != "" && e.Model != "":
		return fmt.Sprintf("%s %s (%s): %v", e.Provider, e.Op, e.Model, e.Err)
	case e.Provider != "":
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new provider error.
func NewError(provider, op string, err error, retryable bool) *Error {
	return &Error{
		Provider:  provider,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable checks if an error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}

	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrTimeout)
}

// IsAuthError checks if an error is credential-related.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrCredentialsNotFound)
}
