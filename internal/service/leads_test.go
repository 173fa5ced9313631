package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzcleanseal/leads-api/internal/config"
	"github.com/rzcleanseal/leads-api/internal/database"
	"github.com/rzcleanseal/leads-api/internal/metrics"
	"github.com/rzcleanseal/leads-api/internal/model"
	"github.com/rzcleanseal/leads-api/internal/repository"
	"github.com/rzcleanseal/leads-api/internal/server"
)

func newTestServer(db *database.Database) *server.Server {
	logger := zerolog.Nop()
	cfg := &config.Config{Primary: config.Primary{Env: "test"}}
	return server.NewWithDatabase(cfg, &logger, nil, db)
}

func TestLeadService(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	s := newTestServer(database.NewWithStore(database.NewMemoryStore("leads"), &logger))

	services, err := NewService(s, repository.NewRepositories(s))
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.LeadsCreated)

	id, err := services.Leads.CreateLead(ctx, &model.Lead{Email: "a@x.pt", Tipo: "orcamento"})
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.LeadsCreated))

	items, err := services.Leads.ListLeads(ctx, *model.NewLeadQuery())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0][model.IDField], "identifier is serialized to its string form")
}

func TestLeadService_Unavailable(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	s := newTestServer(database.NewUnavailable(errors.New("DATABASE_URL is not set"), &logger))
	services, err := NewService(s, repository.NewRepositories(s))
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.LeadsCreated)

	_, err = services.Leads.CreateLead(ctx, &model.Lead{Email: "a@x.pt", Tipo: "t"})
	var storageErr *database.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, before, testutil.ToFloat64(metrics.LeadsCreated))

	_, err = services.Leads.ListLeads(ctx, *model.NewLeadQuery())
	assert.ErrorIs(t, err, database.ErrUnavailable)
}
