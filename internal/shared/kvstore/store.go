// Package kvstore persists whole collections as JSON arrays under a fixed
// key, mirroring the two-collection layout (students, attendanceRecords) the
// tracker has always used.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"stage-manager/internal/shared/apperror"
)

const (
	KeyStudents          = "students"
	KeyAttendanceRecords = "attendanceRecords"
	KeyEvaluations       = "evaluations"
	KeyOutboxEvents      = "outboxEvents"
)

// ErrKeyNotFound is returned by backends when nothing was ever stored under a key.
var ErrKeyNotFound = errors.New("kvstore: key not found")

var (
	ErrStorageRead = apperror.New(
		apperror.CodeServiceUnavailable,
		"failed to read from storage",
		http.StatusServiceUnavailable,
	)
	ErrStorageWrite = apperror.New(
		apperror.CodeServiceUnavailable,
		"failed to write to storage",
		http.StatusServiceUnavailable,
	)
)

//go:generate mockgen -source=store.go -destination=mock/store_mock.go -package=mock
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Update runs fn on the current value and stores its result in one step,
	// serialized against every other Update on the same backend. current is
	// nil when the key was never written. An fn error aborts without writing.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
	Close() error
}

// LoadCollection decodes the collection stored under key. A key that was never
// written yields an empty collection. Any other failure also yields an empty
// collection, together with ErrStorageRead so callers can decide whether the
// fallback is acceptable for them.
func LoadCollection[T any](ctx context.Context, s Store, key string) ([]T, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []T{}, nil
		}
		return []T{}, apperror.WithCause(ErrStorageRead, err)
	}
	out, err := decodeCollection[T](raw)
	if err != nil {
		return []T{}, apperror.WithCause(ErrStorageRead, err)
	}
	return out, nil
}

func decodeCollection[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// UpdateCollection loads, changes and stores the collection under key as one
// Store.Update. A payload that cannot be decoded aborts with ErrStorageRead
// instead of being overwritten. Errors returned by fn are passed through.
func UpdateCollection[T any](ctx context.Context, s Store, key string, fn func(items []T) ([]T, error)) error {
	var abort error
	err := s.Update(ctx, key, func(current []byte) ([]byte, error) {
		items, err := decodeCollection[T](current)
		if err != nil {
			abort = apperror.WithCause(ErrStorageRead, err)
			return nil, abort
		}
		next, err := fn(items)
		if err != nil {
			abort = err
			return nil, err
		}
		if next == nil {
			next = []T{}
		}
		data, err := json.Marshal(next)
		if err != nil {
			abort = apperror.WithCause(ErrStorageWrite, err)
			return nil, abort
		}
		return data, nil
	})
	if err == nil {
		return nil
	}
	if abort != nil {
		return abort
	}
	return apperror.WithCause(ErrStorageWrite, err)
}
