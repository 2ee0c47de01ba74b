// Package files persists upload metadata.
package files

import (
	"context"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
)

const Collection = "files"

type Repository interface {
	FindAll(ctx context.Context) ([]models.File, error)
	FindByID(ctx context.Context, id int64) (*models.File, error)
	Create(ctx context.Context, file *models.File) (*models.File, error)
	Delete(ctx context.Context, id int64) error
}
