package repository

import (
	"context"

	"github.com/rzcleanseal/leads-api/internal/database"
	"github.com/rzcleanseal/leads-api/internal/model"
)

// LeadRepository persists leads in the model.LeadKind collection.
type LeadRepository struct {
	store database.DocumentStore
}

func NewLeadRepository(store database.DocumentStore) *LeadRepository {
	return &LeadRepository{store: store}
}

// Create stores the lead and returns its identifier.
func (r *LeadRepository) Create(ctx context.Context, lead *model.Lead) (string, error) {
	return r.store.CreateDocument(ctx, model.LeadKind, lead.Record())
}

// List returns the leads matching query, at most query.Limit of them.
func (r *LeadRepository) List(ctx context.Context, query model.LeadQuery) ([]model.Record, error) {
	return r.store.GetDocuments(ctx, model.LeadKind, query.Filter(), query.Limit)
}
