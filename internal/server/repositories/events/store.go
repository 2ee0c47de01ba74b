package events

import (
	"context"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
)

type StoreRepository struct {
	records *store.Collection[models.Event]
}

func NewStoreRepository(b store.Backend, opts ...store.CollectionOption) *StoreRepository {
	return &StoreRepository{records: store.NewCollection[models.Event](b, Collection, opts...)}
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	return r.records.All(ctx)
}

func (r *StoreRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	e, err := r.records.Create(ctx, *event)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
