package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/rzcleanseal/leads-api/internal/model"
	"github.com/rzcleanseal/leads-api/internal/server"
	"github.com/rzcleanseal/leads-api/internal/service"
)

// LeadHandler serves /api/leads.
type LeadHandler struct {
	Handler
	leads *service.LeadService
}

func NewLeadHandler(s *server.Server, leads *service.LeadService) *LeadHandler {
	return &LeadHandler{
		Handler: NewHandler(s),
		leads:   leads,
	}
}

type CreateLeadResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type ListLeadsResponse struct {
	Items []model.Record `json:"items"`
	Count int            `json:"count"`
}

func (r *ListLeadsResponse) ResultCount() int {
	return r.Count
}

// CreateLead stores the validated lead.
func (h *LeadHandler) CreateLead(c echo.Context, lead *model.Lead) (*CreateLeadResponse, error) {
	id, err := h.leads.CreateLead(c.Request().Context(), lead)
	if err != nil {
		return nil, err
	}

	return &CreateLeadResponse{Status: "ok", ID: id}, nil
}

// ListLeads returns leads filtered by email and tipo, at most limit.
func (h *LeadHandler) ListLeads(c echo.Context, query *model.LeadQuery) (*ListLeadsResponse, error) {
	items, err := h.leads.ListLeads(c.Request().Context(), *query)
	if err != nil {
		return nil, err
	}

	return &ListLeadsResponse{Items: items, Count: len(items)}, nil
}
