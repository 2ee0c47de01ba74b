package users

import (
	"context"
	"strings"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
)

type StoreRepository struct {
	records *store.Collection[models.User]
}

func NewStoreRepository(b store.Backend, opts ...store.CollectionOption) *StoreRepository {
	return &StoreRepository{records: store.NewCollection[models.User](b, Collection, opts...)}
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]models.User, error) {
	return r.records.All(ctx)
}

func (r *StoreRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := r.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *StoreRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	u, err := r.records.Find(ctx, func(u models.User) bool {
		return strings.EqualFold(strings.TrimSpace(u.Email), email)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *StoreRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u, err := r.records.Create(ctx, *user)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *StoreRepository) Update(ctx context.Context, id int64, fn func(*models.User) error) (*models.User, error) {
	u, err := r.records.Update(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *StoreRepository) TouchLastSeen(ctx context.Context, id int64, at time.Time) error {
	_, err := r.records.Update(ctx, id, func(u *models.User) error {
		at := at.UTC()
		u.LastSeen = &at
		return nil
	})
	return err
}
