// Package middleware holds the Echo middleware of the API: request ids,
// request-scoped logging, New Relic tracing, CORS and the global error
// handler.
package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/rzcleanseal/leads-api/internal/server"
)

// Middlewares groups all middleware components used by the HTTP server,
// built once with their shared dependencies and reused during router
// setup.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and
	// the global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer enriches each request with a request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing provides New Relic middleware.
	Tracing *TracingMiddleware
}

// NewMiddlewares constructs all middleware components. Tracing degrades
// into a no-op when New Relic is not configured.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
	}
}
