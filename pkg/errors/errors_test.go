package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeUnsupportedFormat, "unrecognized document: %s", "bom.json")

	if err.Code != ErrCodeUnsupportedFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUnsupportedFormat)
	}
	if err.Message != "unrecognized document: bom.json" {
		t.Errorf("Message = %v", err.Message)
	}
	if want := "UNSUPPORTED_FORMAT: unrecognized document: bom.json"; err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Wrap(ErrCodeInvalidJSON, cause, "decode sbom")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() should return the cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidJSON, "x"), ErrCodeInvalidJSON, true},
		{"non-matching code", New(ErrCodeInvalidJSON, "x"), ErrCodeNetwork, false},
		{"wrapped", Wrap(ErrCodeNoAnalysis, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeNoAnalysis, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := New(ErrCodeNotFound, "Package not found")
	if GetCode(err) != ErrCodeNotFound {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode() of plain error should be empty")
	}
	if UserMessage(err) != "Package not found" {
		t.Errorf("UserMessage() = %q", UserMessage(err))
	}
	if UserMessage(errors.New("plain error")) != "plain error" {
		t.Error("UserMessage() should pass plain errors through")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeUnsupportedFormat, http.StatusBadRequest},
		{ErrCodeMissingFile, http.StatusBadRequest},
		{ErrCodeNoAnalysis, http.StatusNotFound},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatus(New(tt.code, "x")); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
	if got := HTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus(plain) = %d", got)
	}
}

func TestRateLimitedError(t *testing.T) {
	t.Run("with retry after", func(t *testing.T) {
		err := &RateLimitedError{RetryAfter: 60, Service: "github"}
		if want := "github rate limited: retry after 60 seconds"; err.Error() != want {
			t.Errorf("Error() = %v, want %v", err.Error(), want)
		}
	})

	t.Run("without details", func(t *testing.T) {
		err := &RateLimitedError{}
		if err.Error() != "upstream rate limited" {
			t.Errorf("Error() = %v", err.Error())
		}
		if err.Code() != ErrCodeRateLimited {
			t.Errorf("Code() = %v", err.Code())
		}
	})
}
