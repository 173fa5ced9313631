package service

import (
	"context"

	"github.com/rzcleanseal/leads-api/internal/metrics"
	"github.com/rzcleanseal/leads-api/internal/model"
	"github.com/rzcleanseal/leads-api/internal/repository"
	"github.com/rzcleanseal/leads-api/internal/server"
)

type LeadService struct {
	server *server.Server
	repo   *repository.LeadRepository
}

func NewLeadService(s *server.Server, repo *repository.LeadRepository) *LeadService {
	return &LeadService{
		server: s,
		repo:   repo,
	}
}

// CreateLead stores a validated lead and returns its identifier.
func (s *LeadService) CreateLead(ctx context.Context, lead *model.Lead) (string, error) {
	id, err := s.repo.Create(ctx, lead)
	if err != nil {
		return "", err
	}

	metrics.LeadsCreated.Inc()
	s.server.Logger.Debug().
		Str("lead_id", id).
		Str("tipo", lead.Tipo).
		Msg("lead stored")

	return id, nil
}

// ListLeads returns the matching leads in their external form.
func (s *LeadService) ListLeads(ctx context.Context, query model.LeadQuery) ([]model.Record, error) {
	records, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return model.SerializeAll(records), nil
}
