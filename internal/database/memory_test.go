package database

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rzcleanseal/leads-api/internal/model"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("leads")

	id, err := store.CreateDocument(ctx, "lead", model.Record{"email": "a@x.pt", "tipo": "orcamento"})
	require.NoError(t, err)
	_, hexErr := bson.ObjectIDFromHex(id)
	assert.True(t, hexErr == nil, "id %q is not an object id", id)

	records, err := store.GetDocuments(ctx, "lead", nil, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a@x.pt", records[0]["email"])

	oid, ok := records[0][model.IDField].(bson.ObjectID)
	require.True(t, ok)
	assert.Equal(t, id, oid.Hex())
}

func TestMemoryStore_FilterAndLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("leads")

	for i, tipo := range []string{"a", "b", "a", "a"} {
		_, err := store.CreateDocument(ctx, "lead", model.Record{
			"email": fmt.Sprintf("user%d@x.pt", i),
			"tipo":  tipo,
		})
		require.NoError(t, err)
	}

	onlyA := model.NewFilter(map[string]string{"tipo": "a"})

	records, err := store.GetDocuments(ctx, "lead", onlyA, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "user0@x.pt", records[0]["email"])
	assert.Equal(t, "user2@x.pt", records[1]["email"])
	assert.Equal(t, "user3@x.pt", records[2]["email"])

	records, err = store.GetDocuments(ctx, "lead", onlyA, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = store.GetDocuments(ctx, "lead", model.NewFilter(map[string]string{"tipo": "a", "email": "user2@x.pt"}), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = store.GetDocuments(ctx, "other", nil, 0)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("leads")

	input := model.Record{"email": "a@x.pt", "tipo": "t", "tags": []any{"x"}}
	_, err := store.CreateDocument(ctx, "lead", input)
	require.NoError(t, err)

	input["email"] = "changed"
	input["tags"].([]any)[0] = "changed"
	_, hasID := input[model.IDField]
	assert.False(t, hasID, "input must not be mutated")

	records, err := store.GetDocuments(ctx, "lead", nil, 0)
	require.NoError(t, err)
	records[0]["tipo"] = "changed"

	records, err = store.GetDocuments(ctx, "lead", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "a@x.pt", records[0]["email"])
	assert.Equal(t, "t", records[0]["tipo"])
	assert.Equal(t, []any{"x"}, records[0]["tags"])
}

func TestMemoryStore_ListCollectionNames(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("leads")

	names, err := store.ListCollectionNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = store.CreateDocument(ctx, "lead", model.Record{})
	require.NoError(t, err)
	_, err = store.CreateDocument(ctx, "contact", model.Record{})
	require.NoError(t, err)

	names, err = store.ListCollectionNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"contact", "lead"}, names)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore("leads")
	_, err := store.CreateDocument(ctx, "lead", model.Record{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Ping(ctx), context.Canceled)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("leads")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.CreateDocument(ctx, "lead", model.Record{"tipo": "t"})
			_, _ = store.GetDocuments(ctx, "lead", nil, 0)
		}()
	}
	wg.Wait()

	records, err := store.GetDocuments(ctx, "lead", nil, 0)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}
