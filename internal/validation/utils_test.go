package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzcleanseal/leads-api/internal/errs"
)

var validate = validator.New()

type signupRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=5"`
	Age   int    `json:"age" validate:"min=18"`
	Level string `json:"level" validate:"omitempty,oneof=low high"`
}

func (r *signupRequest) Validate() error {
	return validate.Struct(r)
}

type customRequest struct{}

func (customRequest) Validate() error {
	return CustomValidationErrors{{Field: "email", Message: "must be a string, got number"}}
}

type opaqueRequest struct{}

func (opaqueRequest) Validate() error {
	return errors.New("something odd")
}

func newContext(body string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := &signupRequest{}
		require.NoError(t, BindAndValidate(newContext(`{"name":"Ana","age":30}`), req))
		assert.Equal(t, "Ana", req.Name)
	})

	t.Run("malformed body", func(t *testing.T) {
		err := BindAndValidate(newContext(`{"name":`), &signupRequest{})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "BAD_REQUEST", httpErr.Code)
		assert.NotEmpty(t, httpErr.Detail)
		assert.Empty(t, httpErr.Errors)
	})

	t.Run("unsupported media type keeps its status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Ana"))
		req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
		c := echo.New().NewContext(req, httptest.NewRecorder())

		err := BindAndValidate(c, &signupRequest{})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnsupportedMediaType, httpErr.Status)
		assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", httpErr.Code)
		assert.Equal(t, "Unsupported Media Type", httpErr.Detail)
	})

	t.Run("field errors", func(t *testing.T) {
		err := BindAndValidate(newContext(`{"name":"Alexandra","age":3,"level":"mid"}`), &signupRequest{})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, "Validation failed", httpErr.Detail)
		assert.ElementsMatch(t, []errs.FieldError{
			{Field: "name", Error: "must not exceed 5 characters"},
			{Field: "age", Error: "must be at least 18"},
			{Field: "level", Error: "must be one of: low high"},
		}, httpErr.Errors)
	})

	t.Run("required", func(t *testing.T) {
		err := BindAndValidate(newContext(`{"age":20}`), &signupRequest{})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, []errs.FieldError{{Field: "name", Error: "is required"}}, httpErr.Errors)
	})
}

func TestExtractValidationError(t *testing.T) {
	msg, fields := extractValidationError(customRequest{}.Validate())
	assert.Equal(t, "Validation failed", msg)
	assert.Equal(t, []errs.FieldError{{Field: "email", Error: "must be a string, got number"}}, fields)

	_, fields = extractValidationError(opaqueRequest{}.Validate())
	assert.Equal(t, []errs.FieldError{{Field: "body", Error: "something odd"}}, fields)
}
