package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzcleanseal/leads-api/internal/database"
	"github.com/rzcleanseal/leads-api/internal/model"
)

func TestLeadRepository(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore("leads")
	repo := NewLeadRepository(store)

	lead := &model.Lead{Email: "a@x.pt", Tipo: "orcamento", Extra: map[string]any{"nome": "Ana"}}
	id, err := repo.Create(ctx, lead)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = repo.Create(ctx, &model.Lead{Email: "b@x.pt", Tipo: "contacto"})
	require.NoError(t, err)

	names, err := store.ListCollectionNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{model.LeadKind}, names)

	q := model.NewLeadQuery()
	q.Tipo = "orcamento"
	records, err := repo.List(ctx, *q)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ana", records[0]["nome"])

	all, err := repo.List(ctx, *model.NewLeadQuery())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
