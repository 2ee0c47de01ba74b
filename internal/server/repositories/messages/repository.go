// Package messages persists the append-only direct message log.
package messages

import (
	"context"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
)

const Collection = "messages"

type Repository interface {
	// FindAll returns every message in insertion order.
	FindAll(ctx context.Context) ([]models.Message, error)
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
}
