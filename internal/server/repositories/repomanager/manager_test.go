package repomanager

import (
	"context"
	"testing"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRepositoryManager_SharesBackend(t *testing.T) {
	b := store.NewMemoryStore()
	m := NewStoreRepositoryManager(b)
	ctx := context.Background()

	_, err := m.Users().Create(ctx, &models.User{Email: "a@x.org"})
	require.NoError(t, err)

	again := NewStoreRepositoryManager(b)
	got, err := again.Users().FindByEmail(ctx, "a@x.org")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	members, err := m.Members().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, members, "collections do not leak into each other")
}

func TestCollections(t *testing.T) {
	assert.ElementsMatch(t, []string{"users", "members", "messages", "files", "events"}, Collections())
}
