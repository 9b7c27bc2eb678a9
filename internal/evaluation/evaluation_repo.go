package evaluation

import (
	"context"

	"stage-manager/internal/shared/kvstore"
)

//go:generate mockgen -source=evaluation_repo.go -destination=mock/evaluation_repo_mock.go -package=mock
type Repository interface {
	FindAll(ctx context.Context) ([]Evaluation, error)
	Create(ctx context.Context, e *Evaluation) error
}

type repository struct {
	store kvstore.Store
}

func NewRepository(store kvstore.Store) Repository {
	return &repository{store: store}
}

func (r *repository) FindAll(ctx context.Context) ([]Evaluation, error) {
	return kvstore.LoadCollection[Evaluation](ctx, r.store, kvstore.KeyEvaluations)
}

// Create appends e. A collection that cannot be read is left untouched.
func (r *repository) Create(ctx context.Context, e *Evaluation) error {
	return kvstore.UpdateCollection(ctx, r.store, kvstore.KeyEvaluations, func(all []Evaluation) ([]Evaluation, error) {
		return append(all, *e), nil
	})
}
