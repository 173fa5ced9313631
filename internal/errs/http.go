// Package errs defines custom error types and utilities.
//
// Its purpose is to create specific error structures
// (FieldErrors for request payloads, HTTPError for API responses)
// so every client receives the same error shape:
//
//	{"detail": "...", "code": "BAD_REQUEST", "status": 400, "errors": [...]}
package errs

import "strings"

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "email", "error": "is required" }
type FieldError struct {
	// Field is the field name/key the error relates to (e.g. "email").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// HTTPError is the main custom error type for API responses.
//
// It is serialized directly to JSON by the global error handler.
// Fields:
//   - Detail: human-friendly message.
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Status: HTTP status code.
//   - Errors: list of per-field errors (validation).
type HTTPError struct {
	Detail string       `json:"detail"`
	Code   string       `json:"code"`
	Status int          `json:"status"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	return e.Detail
}

// Is reports whether target is also an *HTTPError. Code and status are
// not compared.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithDetail returns a copy of this HTTPError with Detail replaced.
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	return &HTTPError{
		Detail: detail,
		Code:   e.Code,
		Status: e.Status,
		Errors: e.Errors,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
