// Package services contains the roster hub's business logic. Services take a
// repomanager.RepositoryManager and return sentinel errors from
// internal/common that the transports translate to status codes.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/server/auth"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
)

// resolveCaller loads the stored user behind an identity. A missing identity
// or a deleted user is common.ErrNotAuthenticated.
func resolveCaller(ctx context.Context, rm repomanager.RepositoryManager, caller *auth.Identity) (*models.User, error) {
	if caller == nil || caller.UserID <= 0 {
		return nil, common.ErrNotAuthenticated
	}

	u, err := rm.Users().FindByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("resolve caller: %w", err)
	}
	return u, nil
}
