package genai

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError represents a rate limit response from the model API
// (HTTP 429 or a RESOURCE_EXHAUSTED status). It is the only error kind
// that warrants a retry.
type RateLimitError struct {
	// Model is the model that was requested
	Model string

	// RetryAfter is the duration to wait before retrying (if provided)
	RetryAfter time.Duration

	// Message is the error message from the API
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("model %q rate limit exceeded (retry after %s): %s",
			e.Model, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("model %q rate limit exceeded: %s", e.Model, e.Message)
}

// APIError represents a non-retryable error response from the model API.
type APIError struct {
	// Model is the model that was requested
	Model string

	// StatusCode is the HTTP status code
	StatusCode int

	// Status is the API status string (e.g. "INVALID_ARGUMENT")
	Status string

	// Message is the error message from the API
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("model %q error (status %d, %s): %s",
			e.Model, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("model %q error (status %d): %s", e.Model, e.StatusCode, e.Message)
}

// ParseError represents a malformed response from the model API.
type ParseError struct {
	// Model is the model that returned the malformed response
	Model string

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("model %q response parse error: %v", e.Model, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid client configuration.
type ConfigError struct {
	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("genai configuration error for field %q: %s", e.Field, e.Message)
}

// IsRateLimited reports whether err is (or wraps) a RateLimitError.
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
