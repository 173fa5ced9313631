// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/rzcleanseal/leads-api/internal/repository"
	"github.com/rzcleanseal/leads-api/internal/server"
)

type Services struct {
	Leads  *LeadService
	System *SystemService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Leads:  NewLeadService(s, repos.Leads),
		System: NewSystemService(s.DB),
	}, nil
}
