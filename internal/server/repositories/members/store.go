package members

import (
	"context"
	"strings"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
)

type StoreRepository struct {
	records *store.Collection[models.Member]
}

func NewStoreRepository(b store.Backend, opts ...store.CollectionOption) *StoreRepository {
	return &StoreRepository{records: store.NewCollection[models.Member](b, Collection, opts...)}
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]models.Member, error) {
	return r.records.All(ctx)
}

func (r *StoreRepository) FindByID(ctx context.Context, id int64) (*models.Member, error) {
	m, err := r.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *StoreRepository) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	email = strings.TrimSpace(email)
	m, err := r.records.Find(ctx, func(m models.Member) bool {
		return strings.EqualFold(strings.TrimSpace(m.Email), email)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *StoreRepository) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	m, err := r.records.Create(ctx, *member)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *StoreRepository) Update(ctx context.Context, id int64, fn func(*models.Member) error) (*models.Member, error) {
	m, err := r.records.Update(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
