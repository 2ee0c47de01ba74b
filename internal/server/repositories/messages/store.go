package messages

import (
	"context"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
)

type StoreRepository struct {
	records *store.Collection[models.Message]
}

func NewStoreRepository(b store.Backend, opts ...store.CollectionOption) *StoreRepository {
	return &StoreRepository{records: store.NewCollection[models.Message](b, Collection, opts...)}
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]models.Message, error) {
	return r.records.All(ctx)
}

func (r *StoreRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	m, err := r.records.Create(ctx, *msg)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
