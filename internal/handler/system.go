package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/rzcleanseal/leads-api/internal/server"
	"github.com/rzcleanseal/leads-api/internal/service"
)

const (
	rootMessage  = "RZ-CLEAN-SEAL API a funcionar"
	helloMessage = "Bem-vindo à API da RZ-CLEAN-SEAL"
)

// SystemHandler serves the root, greeting and diagnostics endpoints.
type SystemHandler struct {
	Handler
	system *service.SystemService
}

func NewSystemHandler(s *server.Server, system *service.SystemService) *SystemHandler {
	return &SystemHandler{
		Handler: NewHandler(s),
		system:  system,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *SystemHandler) Root(c echo.Context) (*MessageResponse, error) {
	return &MessageResponse{Message: rootMessage}, nil
}

func (h *SystemHandler) Hello(c echo.Context) (*MessageResponse, error) {
	return &MessageResponse{Message: helloMessage}, nil
}

// Diagnostics reports store connectivity. It always succeeds; the
// report describes what went wrong.
func (h *SystemHandler) Diagnostics(c echo.Context) (*service.DiagnosticsReport, error) {
	return h.system.Diagnostics(c.Request().Context()), nil
}
