// ABOUTME: Custom error types for the core business logic
// ABOUTME: Classifies fetch failures so the retry controller and switching policy can act on them

package errors

import (
	"errors"
	"fmt"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExternalAPIError represents an error from an external API
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// FetchKind classifies a failed fetch attempt
type FetchKind string

const (
	// KindRateLimited is an HTTP 429 response
	KindRateLimited FetchKind = "rate_limited"

	// KindBlocked is an HTTP 403 response
	KindBlocked FetchKind = "blocked"

	// KindStatus is any other non-200 response
	KindStatus FetchKind = "status"

	// KindTimeout is a request that ran past its deadline
	KindTimeout FetchKind = "timeout"

	// KindConnection is a dial, DNS or connection reset failure
	KindConnection FetchKind = "connection"

	// KindTransport is any other transport failure
	KindTransport FetchKind = "transport"

	// KindParse is a payload that could not be decoded
	KindParse FetchKind = "parse"
)

// FetchError describes one failed attempt against an upstream endpoint
type FetchError struct {
	Kind       FetchKind
	StatusCode int
	Endpoint   string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s failed (%s)", e.Endpoint, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// KindOf returns the fetch kind of err, or an empty kind if err is not a FetchError
func KindOf(err error) FetchKind {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind
	}
	return ""
}

// IsRateLimited checks if an error is a rate-limited FetchError
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}

// IsBlocked checks if an error is a blocked FetchError
func IsBlocked(err error) bool {
	return KindOf(err) == KindBlocked
}

// IsTimeout checks if an error is a timed-out FetchError
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
