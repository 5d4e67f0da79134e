package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote call failures.
var (
	// ErrRateLimit marks rate-limiting responses; the transport retries
	// these internally before surfacing them.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrInvalidResponse marks a response body that could not be parsed
	// into the expected structure.
	ErrInvalidResponse = errors.New("invalid response from endpoint")

	// ErrNetwork marks transport-level failures (connection, timeout).
	ErrNetwork = errors.New("network error")
)

// APIError wraps an error payload surfaced by the endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
