package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzcleanseal/leads-api/internal/config"
	"github.com/rzcleanseal/leads-api/internal/database"
	"github.com/rzcleanseal/leads-api/internal/errs"
	"github.com/rzcleanseal/leads-api/internal/server"
	"github.com/rzcleanseal/leads-api/internal/sqlerr"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server:  config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
	}
	return server.NewWithDatabase(cfg, &logger, nil, database.NewUnavailable(nil, &logger))
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = GetRequestID(c)
		return c.NoContent(http.StatusOK)
	}, RequestID())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err, "generated ids are UUIDs")
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-id", seen)
	assert.Equal(t, "upstream-id", rec.Header().Get(RequestIDHeader))
}

func TestGetLogger_Fallback(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.NotNil(t, GetLogger(c))
	assert.Equal(t, "", GetRequestID(c))
}

func TestEnhanceContext(t *testing.T) {
	s := newTestServer()
	e := echo.New()

	var logger *zerolog.Logger
	e.GET("/", func(c echo.Context) error {
		logger = GetLogger(c)
		return c.NoContent(http.StatusOK)
	}, RequestID(), NewContextEnhancer(s).EnhanceContext())

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotNil(t, logger)
}

func TestTracingRequestAttributes(t *testing.T) {
	tm := NewTracingMiddleware(newTestServer(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/leads?email=a@x.pt&limit=5", nil)
	req.Header.Set("User-Agent", "leads-test")
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.Set(RequestIDKey, "req-1")

	assert.Equal(t, map[string]any{
		"http.real_ip":        "192.0.2.1",
		"http.user_agent":     "leads-test",
		"service.environment": "test",
		"store.state":         "unavailable",
		"request.id":          "req-1",
		"query.email_set":     true,
		"query.limit_set":     true,
	}, tm.requestAttributes(c))
}

func TestTracing_DisabledPassesThrough(t *testing.T) {
	tm := NewTracingMiddleware(newTestServer(), nil)
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusTeapot)
	}, tm.NewRelicMiddleware(), tm.EnhanceTracing())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "http error passes through",
			err:        fmt.Errorf("wrapped: %w", errs.NewBadRequestError("Validation failed", nil, nil)),
			wantStatus: http.StatusBadRequest,
			wantDetail: "Validation failed",
		},
		{
			name:       "storage error keeps its message",
			err:        &database.StorageError{Op: "insert", Kind: "lead", Err: errors.New("connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantDetail: "insert lead: connection refused",
		},
		{
			name:       "route not found",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantDetail: "Route not found",
		},
		{
			name:       "method not allowed",
			err:        echo.ErrMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
			wantDetail: "Method Not Allowed",
		},
		{
			name:       "unknown error is masked",
			err:        errors.New("secret internals"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toHTTPError(tt.err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantDetail, got.Detail)
			assert.Equal(t, tt.wantStatus, statusFromError(tt.err))
		})
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	global := NewGlobalMiddlewares(newTestServer())
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/leads", nil), rec)
	global.GlobalErrorHandler(&database.StorageError{Op: "find", Kind: "lead", Err: database.ErrUnavailable}, c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"find lead: database not available","code":"INTERNAL_SERVER_ERROR","status":500}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/api/leads", nil), rec)
	duplicate := &sqlerr.Error{
		Code:         sqlerr.UniqueViolation,
		AppCode:      "DOCUMENT_ALREADY_EXISTS",
		DatabaseCode: "23505",
		Message:      "A Document with this Id already exists",
	}
	global.GlobalErrorHandler(&database.StorageError{Op: "insert", Kind: "lead", Err: duplicate}, c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"insert lead: A Document with this Id already exists","code":"DOCUMENT_ALREADY_EXISTS","status":500}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)
	global.GlobalErrorHandler(echo.ErrNotFound, c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}
