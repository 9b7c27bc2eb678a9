package kvstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"stage-manager/internal/shared/kvstore"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupPostgresStore(t *testing.T) (*kvstore.PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)

	return kvstore.NewPostgresStore(gdb), mock
}

func TestPostgresStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		s, mock := setupPostgresStore(t)
		rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow(kvstore.KeyStudents, []byte(`[{"id":"1","name":"Ana"}]`), time.Now())
		mock.ExpectQuery(`SELECT \* FROM "kv_entries" WHERE key = \$1`).WillReturnRows(rows)

		out, err := kvstore.LoadCollection[item](ctx, s, kvstore.KeyStudents)
		assert.NoError(t, err)
		assert.Equal(t, []item{{ID: "1", Name: "Ana"}}, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		s, mock := setupPostgresStore(t)
		mock.ExpectQuery(`SELECT \* FROM "kv_entries" WHERE key = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

		out, err := kvstore.LoadCollection[item](ctx, s, kvstore.KeyStudents)
		assert.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("connection error", func(t *testing.T) {
		s, mock := setupPostgresStore(t)
		mock.ExpectQuery(`SELECT \* FROM "kv_entries"`).WillReturnError(errors.New("connection refused"))

		out, err := kvstore.LoadCollection[item](ctx, s, kvstore.KeyStudents)
		assert.Empty(t, out)
		assert.ErrorIs(t, err, kvstore.ErrStorageRead)
	})
}

func TestPostgresStore_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert", func(t *testing.T) {
		s, mock := setupPostgresStore(t)
		mock.ExpectExec(`INSERT INTO "kv_entries" .* ON CONFLICT \("key"\) DO UPDATE`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.Put(ctx, kvstore.KeyStudents, []byte(`[{"id":"1","name":"Ana"}]`))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("write failure", func(t *testing.T) {
		s, mock := setupPostgresStore(t)
		mock.ExpectExec(`INSERT INTO "kv_entries"`).WillReturnError(errors.New("disk full"))

		err := s.Put(ctx, kvstore.KeyStudents, []byte(`[]`))
		assert.EqualError(t, err, "disk full")
	})
}

func TestPostgresStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("locks the row and rewrites it", func(t *testing.T) {
		s, mock := setupPostgresStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "kv_entries" .* ON CONFLICT DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "kv_entries" WHERE key = \$1 .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).
				AddRow(kvstore.KeyStudents, []byte(`[{"id":"1","name":"Ana"}]`), time.Now()))
		mock.ExpectExec(`UPDATE "kv_entries" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := kvstore.UpdateCollection(ctx, s, kvstore.KeyStudents, func(items []item) ([]item, error) {
			assert.Equal(t, []item{{ID: "1", Name: "Ana"}}, items)
			return append(items, item{ID: "2", Name: "Carlos"}), nil
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fn error rolls back", func(t *testing.T) {
		s, mock := setupPostgresStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "kv_entries"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT \* FROM "kv_entries"`).
			WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).
				AddRow(kvstore.KeyStudents, []byte{}, time.Now()))
		mock.ExpectRollback()

		boom := errors.New("duplicate")
		err := kvstore.UpdateCollection(ctx, s, kvstore.KeyStudents, func(items []item) ([]item, error) {
			assert.Empty(t, items)
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock failure is a write failure", func(t *testing.T) {
		s, mock := setupPostgresStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "kv_entries"`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := kvstore.UpdateCollection(ctx, s, kvstore.KeyStudents, func(items []item) ([]item, error) {
			return items, nil
		})
		assert.ErrorIs(t, err, kvstore.ErrStorageWrite)
	})
}
