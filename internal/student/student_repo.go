package student

import (
	"context"
	"fmt"

	"stage-manager/internal/shared/apperror"
	"stage-manager/internal/shared/kvstore"
	studenterrors "stage-manager/internal/student/errors"
)

//go:generate mockgen -source=student_repo.go -destination=mock/student_repo_mock.go -package=mock
type Repository interface {
	FindAll(ctx context.Context) ([]Student, error)
	FindByID(ctx context.Context, id string) (*Student, error)
	FindByIDs(ctx context.Context, ids []string) ([]Student, error)
	Create(ctx context.Context, s *Student) error
	Seed(ctx context.Context, students []Student) (bool, error)
}

type repository struct {
	store kvstore.Store
}

func NewRepository(store kvstore.Store) Repository {
	return &repository{store: store}
}

// FindAll returns the stored collection. On a read failure the empty fallback
// is returned together with the error.
func (r *repository) FindAll(ctx context.Context) ([]Student, error) {
	return kvstore.LoadCollection[Student](ctx, r.store, kvstore.KeyStudents)
}

func (r *repository) FindByID(ctx context.Context, id string) (*Student, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, apperror.WithCause(studenterrors.ErrStudentNotFound, fmt.Errorf("student %s", id))
}

// FindByIDs resolves ids in the given order. The first unknown id fails the whole lookup.
func (r *repository) FindByIDs(ctx context.Context, ids []string) ([]Student, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Student, len(all))
	for _, s := range all {
		byID[s.ID] = s
	}

	out := make([]Student, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, apperror.WithCause(studenterrors.ErrStudentNotFound, fmt.Errorf("student %s", id))
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *repository) Create(ctx context.Context, s *Student) error {
	return kvstore.UpdateCollection(ctx, r.store, kvstore.KeyStudents, func(all []Student) ([]Student, error) {
		for _, existing := range all {
			if existing.ID == s.ID {
				return nil, studenterrors.ErrStudentAlreadyExists
			}
		}
		return append(all, *s), nil
	})
}

// Seed stores students only when the collection is empty.
func (r *repository) Seed(ctx context.Context, students []Student) (bool, error) {
	seeded := false
	err := kvstore.UpdateCollection(ctx, r.store, kvstore.KeyStudents, func(all []Student) ([]Student, error) {
		if len(all) > 0 {
			return all, nil
		}
		seeded = true
		return students, nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}
