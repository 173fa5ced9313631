// Package handler is the first layer after the router.
//
// It parses requests, handles input validation using the validation
// package, and calls the appropriate service layer.
package handler

import (
	"github.com/rzcleanseal/leads-api/internal/server"
	"github.com/rzcleanseal/leads-api/internal/service"
)

// Handlers is a container that groups all HTTP handlers.
type Handlers struct {
	Leads   *LeadHandler
	System  *SystemHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Leads:   NewLeadHandler(s, services.Leads),
		System:  NewSystemHandler(s, services.System),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
