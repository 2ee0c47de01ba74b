package files

import (
	"context"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
)

type StoreRepository struct {
	records *store.Collection[models.File]
}

func NewStoreRepository(b store.Backend, opts ...store.CollectionOption) *StoreRepository {
	return &StoreRepository{records: store.NewCollection[models.File](b, Collection, opts...)}
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]models.File, error) {
	return r.records.All(ctx)
}

func (r *StoreRepository) FindByID(ctx context.Context, id int64) (*models.File, error) {
	f, err := r.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *StoreRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	f, err := r.records.Create(ctx, *file)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *StoreRepository) Delete(ctx context.Context, id int64) error {
	return r.records.Delete(ctx, id)
}
