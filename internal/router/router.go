// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rzcleanseal/leads-api/internal/handler"
	"github.com/rzcleanseal/leads-api/internal/middleware"
	"github.com/rzcleanseal/leads-api/internal/server"
)

// NewRouter builds the Echo instance with the middleware chain and every
// route registered.
//
// Order matters: the New Relic transaction must exist before the
// request id and logger are attached to it, and the logger must exist
// before anything logs.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Tracing.NewRelicMiddleware(),
		middleware.RequestID(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)
	registerLeadRoutes(router, h)

	return router
}
