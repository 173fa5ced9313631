package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	RequestIDHeader = echo.HeaderXRequestID

	// RequestIDKey holds the correlation ID in the echo context.
	RequestIDKey = "request_id"
)

// RequestID tags each request with a correlation ID, reusing the
// caller's X-Request-ID when present and a fresh UUID otherwise. The ID
// is echoed back on the response.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		TargetHeader: RequestIDHeader,
		Generator:    uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			c.Set(RequestIDKey, id)
		},
	})
}

// GetRequestID returns the correlation ID, or "" outside RequestID.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(RequestIDKey).(string)
	return id
}
