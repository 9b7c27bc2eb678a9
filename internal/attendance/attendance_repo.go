package attendance

import (
	"context"

	"stage-manager/internal/shared/kvstore"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	FindAll(ctx context.Context) ([]AttendanceRecord, error)
	// Update applies fn to the stored collection and saves its result as one
	// atomic step. An fn error aborts without saving.
	Update(ctx context.Context, fn func(existing []AttendanceRecord) ([]AttendanceRecord, error)) error
}

type repository struct {
	store kvstore.Store
}

func NewRepository(store kvstore.Store) Repository {
	return &repository{store: store}
}

// FindAll loads the whole collection. A read failure yields an empty slice
// alongside kvstore.ErrStorageRead.
func (r *repository) FindAll(ctx context.Context) ([]AttendanceRecord, error) {
	return kvstore.LoadCollection[AttendanceRecord](ctx, r.store, kvstore.KeyAttendanceRecords)
}

func (r *repository) Update(ctx context.Context, fn func(existing []AttendanceRecord) ([]AttendanceRecord, error)) error {
	return kvstore.UpdateCollection(ctx, r.store, kvstore.KeyAttendanceRecords, fn)
}
