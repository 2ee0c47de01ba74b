package members

import (
	"context"
	"errors"
	"testing"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRepository_Lifecycle(t *testing.T) {
	repo := NewStoreRepository(store.NewMemoryStore())
	ctx := context.Background()

	m, err := repo.Create(ctx, &models.Member{Name: "Ravi", Email: "ravi@x.org", Role: "Member"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)

	byEmail, err := repo.FindByEmail(ctx, "RAVI@x.org")
	require.NoError(t, err)
	assert.Equal(t, m.ID, byEmail.ID)

	updated, err := repo.Update(ctx, m.ID, func(m *models.Member) error {
		m.Role = "Chair"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Chair", updated.Role)

	_, err = repo.FindByID(ctx, 77)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStoreRepository_UpdateErrorLeavesRecord(t *testing.T) {
	repo := NewStoreRepository(store.NewMemoryStore())
	ctx := context.Background()

	m, err := repo.Create(ctx, &models.Member{Name: "Ravi", Role: "Member"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, m.ID, func(m *models.Member) error {
		m.Role = "Chair"
		return errors.New("rejected")
	})
	require.Error(t, err)

	got, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Member", got.Role)
}
