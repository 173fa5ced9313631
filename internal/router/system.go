package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rzcleanseal/leads-api/internal/handler"
)

// registerSystemRoutes registers endpoints that are not part of the
// leads API: greeting, diagnostics, health, metrics and docs.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", handler.HandleNoInput(h.System.Handler, h.System.Root, http.StatusOK))
	r.GET("/api/hello", handler.HandleNoInput(h.System.Handler, h.System.Hello, http.StatusOK))

	// Connectivity report, always 200.
	r.GET("/test", handler.HandleNoInput(h.System.Handler, h.System.Diagnostics, http.StatusOK))

	// Readiness, 503 when the store does not answer.
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// openapi.json and the docs page assets.
	r.Static("/static", handler.StaticDir)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
