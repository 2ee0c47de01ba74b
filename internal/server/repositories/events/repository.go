// Package events persists calendar entries and announcements.
package events

import (
	"context"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
)

const Collection = "events"

type Repository interface {
	FindAll(ctx context.Context) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
}
