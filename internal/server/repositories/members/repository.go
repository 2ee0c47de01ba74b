// Package members persists roster entries.
package members

import (
	"context"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
)

const Collection = "members"

type Repository interface {
	FindAll(ctx context.Context) ([]models.Member, error)
	FindByID(ctx context.Context, id int64) (*models.Member, error)
	FindByEmail(ctx context.Context, email string) (*models.Member, error)
	Create(ctx context.Context, member *models.Member) (*models.Member, error)
	Update(ctx context.Context, id int64, fn func(*models.Member) error) (*models.Member, error)
}
