// Package errors provides structured error types for sbomlens.
//
// Errors carry a machine-readable [Code] so the CLI and the HTTP API can
// report failures consistently:
//
//	err := errors.New(errors.ErrCodeUnsupportedFormat, "unrecognized SBOM document")
//	if errors.Is(err, errors.ErrCodeUnsupportedFormat) {
//	    // reject the upload
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidJSON, origErr, "decode %s", name)
//
// Only input errors are meant to reach users. Enrichment failures are
// absorbed by the pipeline and never surface as coded errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidJSON       Code = "INVALID_JSON"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidQuery      Code = "INVALID_QUERY"
	ErrCodeMissingFile       Code = "MISSING_FILE"

	// Lookup errors
	ErrCodeNotFound   Code = "NOT_FOUND"
	ErrCodeNoAnalysis Code = "NO_ANALYSIS"

	// Upstream errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error wrapping cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from err, or "" if it has none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix.
// Errors that are not *Error are returned as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidJSON, ErrCodeUnsupportedFormat,
		ErrCodeInvalidQuery, ErrCodeMissingFile:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeNoAnalysis:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RateLimitedError reports an upstream rate limit.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 if unknown
	Service    string
}

func (e *RateLimitedError) Error() string {
	name := "upstream"
	if e.Service != "" {
		name = e.Service
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limited: retry after %d seconds", name, e.RetryAfter)
	}
	return name + " rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
