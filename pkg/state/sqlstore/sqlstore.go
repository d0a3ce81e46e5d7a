// Package sqlstore keeps encoded snapshots in a single key/value table
// through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type sqlSnapshot struct {
	Key   string `gorm:"primaryKey"`
	Value string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sqlSnapshot) TableName() string {
	return "booster_snapshots"
}

// WithSqlite returns a dialector for a WAL-journaled database file.
func WithSqlite(file string) gorm.Dialector {
	return sqlite.Open(file + "?_pragma=journal_mode(WAL)")
}

// WithSqliteInMemory returns a dialector for a private in-memory database.
func WithSqliteInMemory() gorm.Dialector {
	return sqlite.Open(":memory:")
}

// Option configures Open.
type Option func(*gorm.Config)

// WithLogger replaces the default silent gorm logger.
func WithLogger(l logger.Interface) Option {
	return func(cfg *gorm.Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// Backend implements state.Backend on top of a gorm connection.
type Backend struct {
	db *gorm.DB
}

// Open connects with d and migrates the snapshot table.
func Open(d gorm.Dialector, opts ...Option) (*Backend, error) {
	cfg := &gorm.Config{Logger: logger.Discard}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	db, err := gorm.Open(d, cfg)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}

	// every pooled connection to ":memory:" would otherwise see its own database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&sqlSnapshot{}); err != nil {
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return &Backend{db: db}, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row sqlSnapshot
	err := b.db.WithContext(ctx).Where(&sqlSnapshot{Key: key}).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(row.Value), true, nil
}

func (b *Backend) Put(ctx context.Context, key string, data []byte) error {
	row := sqlSnapshot{Key: key, Value: string(data)}
	return b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	return b.db.WithContext(ctx).Where(&sqlSnapshot{Key: key}).Delete(&sqlSnapshot{}).Error
}

// Close releases the underlying connection pool.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
