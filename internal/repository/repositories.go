// Package repository handles all interactions with the document store.
//
// It binds the persistence adapter to concrete collections so the
// service layer never deals with collection names or raw records.
package repository

import (
	"github.com/rzcleanseal/leads-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Leads *LeadRepository
}

// NewRepositories constructs the repository container on top of the
// store handle owned by s.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Leads: NewLeadRepository(s.DB),
	}
}
