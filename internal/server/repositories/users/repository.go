// Package users persists login accounts.
package users

import (
	"context"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
)

// Collection is the store collection holding users.
const Collection = "users"

type Repository interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// FindByEmail matches case-insensitively and returns common.ErrorNotFound
	// when no user has the address.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id int64, fn func(*models.User) error) (*models.User, error)
	TouchLastSeen(ctx context.Context, id int64, at time.Time) error
}
