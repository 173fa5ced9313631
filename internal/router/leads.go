package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rzcleanseal/leads-api/internal/handler"
	"github.com/rzcleanseal/leads-api/internal/model"
)

func registerLeadRoutes(r *echo.Echo, h *handler.Handlers) {
	leads := r.Group("/api/leads")

	leads.POST("", handler.Handle(h.Leads.Handler, h.Leads.CreateLead, http.StatusOK, model.NewLead))
	leads.GET("", handler.Handle(h.Leads.Handler, h.Leads.ListLeads, http.StatusOK, model.NewLeadQuery))
}
