package users

import (
	"context"
	"testing"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *StoreRepository {
	t.Helper()
	return NewStoreRepository(store.NewMemoryStore())
}

func TestCreateAndFindByEmail_CaseInsensitive(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Email: "Asha@ISTE.org", Name: "Asha", Role: "Chair"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.FindByEmail(ctx, " asha@iste.org ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.FindByEmail(ctx, "nobody@iste.org")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestTouchLastSeen_UpdatesExactlyOneUser(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, &models.User{Email: "a@x.org"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, &models.User{Email: "b@x.org"})
	require.NoError(t, err)

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.TouchLastSeen(ctx, a.ID, at))

	gotA, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, gotA.LastSeen)
	assert.True(t, gotA.LastSeen.Equal(at))

	gotB, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, gotB.LastSeen)

	assert.ErrorIs(t, repo.TouchLastSeen(ctx, 99, at), common.ErrorNotFound)
}

func TestUpdate_ChangesFields(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	u, err := repo.Create(ctx, &models.User{Email: "a@x.org", Role: "Member"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, u.ID, func(u *models.User) error {
		u.Role = "Secretary"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Secretary", updated.Role)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Secretary", all[0].Role)
}
