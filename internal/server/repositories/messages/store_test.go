package messages

import (
	"context"
	"testing"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRepository_PreservesOrderAndParties(t *testing.T) {
	repo := NewStoreRepository(store.NewMemoryStore())
	ctx := context.Background()

	first, err := repo.Create(ctx, &models.Message{From: models.UserParty(1), To: models.UserParty(2), Content: "hi"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Message{From: models.LegacyAdmin, To: models.UserParty(2), Content: "notice"})
	require.NoError(t, err)

	assert.False(t, first.Timestamp.IsZero())
	assert.WithinDuration(t, time.Now(), first.Timestamp, time.Minute)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "hi", all[0].Content)
	assert.True(t, all[1].From.IsLegacyAdmin())
}
