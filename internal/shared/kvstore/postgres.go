package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entry struct {
	Key       string    `gorm:"column:key;type:varchar(100);primaryKey"`
	Value     []byte    `gorm:"column:value;type:bytea;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

// PostgresStore keeps every collection as one row of kv_entries.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the kv_entries table when missing.
func (s *PostgresStore) Migrate() error {
	return s.db.AutoMigrate(&Entry{})
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return e.Value, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	return describePgError(key, err)
}

// Update locks the row with SELECT ... FOR UPDATE inside a transaction. A
// placeholder row is inserted first so there is always a row to lock.
func (s *PostgresStore) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		placeholder := Entry{Key: key, Value: []byte{}, UpdatedAt: time.Now().UTC()}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&placeholder).Error
		if err != nil {
			return describePgError(key, err)
		}

		var e Entry
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("key = ?", key).First(&e).Error
		if err != nil {
			return err
		}

		next, err := fn(e.Value)
		if err != nil {
			return err
		}
		err = tx.Model(&Entry{}).Where("key = ?", key).Updates(map[string]any{
			"value":      next,
			"updated_at": time.Now().UTC(),
		}).Error
		return describePgError(key, err)
	})
}

func describePgError(key string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("write %s: %s (sqlstate %s): %w", key, pgErr.Message, pgErr.Code, err)
	}
	return err
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
