package errs

import (
	"net/http"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// This supports extra payload:
//   - code: optional custom code string (if nil, defaults to "BAD_REQUEST")
//   - errors: optional slice of field errors (validation errors)
func NewBadRequestError(message string, code *string, errors []FieldError) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Detail: message,
		Code:   formattedCode,
		Status: http.StatusBadRequest,
		Errors: errors,
	}
}

// NewHTTPError creates an HTTPError for any status, coded after its
// status text.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		Detail: message,
		Code:   MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Status: status,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Detail: message,
		Code:   formattedCode,
		Status: http.StatusNotFound,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError
// carrying the generic status text.
func NewInternalServerError() *HTTPError {
	return NewInternalServerErrorWithDetail(http.StatusText(http.StatusInternalServerError))
}

// NewInternalServerErrorWithDetail creates a 500 whose detail is shown
// to the client as-is.
func NewInternalServerErrorWithDetail(detail string) *HTTPError {
	return &HTTPError{
		Detail: detail,
		Code:   MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Status: http.StatusInternalServerError,
	}
}
