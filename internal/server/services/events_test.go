package services

import (
	"context"
	"testing"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_CreateAndList(t *testing.T) {
	rm := repomanager.NewStoreRepositoryManager(store.NewMemoryStore())
	svc := NewEventService(rm, logging.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.Event{Title: "  "})
	require.ErrorIs(t, err, common.ErrValidation)

	created, err := svc.Create(ctx, models.Event{
		ID:          42,
		Title:       "Tech Talk",
		Date:        "2025-07-01",
		Type:        "workshop",
		Description: "**Bring** a laptop\n\n- [x] register\n\n<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID, "ids are assigned by the store")

	_, err = svc.Create(ctx, models.Event{Title: "Plain"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	html := list[0].DescriptionHTML
	assert.Contains(t, html, "<strong>Bring</strong>")
	assert.Contains(t, html, `type="checkbox"`)
	assert.NotContains(t, html, "<script>")

	assert.Equal(t, "", list[1].DescriptionHTML)
}
