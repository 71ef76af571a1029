package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/docsync/pkg/db/migrations"
	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/vaulterr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const queryBatchSize = 256

var errQueryDone = errors.New("query limit reached")

// SQLiteStore implements MetadataStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	LogLevel     logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed metadata store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs pending schema migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Record operations

func (s *SQLiteStore) Get(ctx context.Context, key string) (*models.Record, error) {
	var record models.Record
	err := s.db.WithContext(ctx).Where("record_key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, vaulterr.NewNotFoundError(key, "record")
	}
	if err != nil {
		return nil, vaulterr.NewRemoteUnavailableError("sqlite get record", err)
	}
	return &record, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, record *models.Record, merge bool) error {
	next := record.Clone()
	next.Key = key

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if merge {
			var stored models.Record
			err := tx.Where("record_key = ?", key).First(&stored).Error
			switch {
			case err == nil:
				next = models.Merge(stored, next)
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_key"}},
			UpdateAll: true,
		}).Create(&next).Error
	})
	if err != nil {
		return vaulterr.NewRemoteUnavailableError("sqlite put record", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("record_key = ?", key).Delete(&models.Record{}).Error; err != nil {
		return vaulterr.NewRemoteUnavailableError("sqlite delete record", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, predicate Predicate, limit int) ([]models.Record, error) {
	var (
		out   []models.Record
		batch []models.Record
	)

	err := s.db.WithContext(ctx).FindInBatches(&batch, queryBatchSize, func(tx *gorm.DB, n int) error {
		for i := range batch {
			if !accept(predicate, &batch[i]) {
				continue
			}
			out = append(out, batch[i])
			if limit > 0 && len(out) >= limit {
				return errQueryDone
			}
		}
		return nil
	}).Error
	if err != nil && !errors.Is(err, errQueryDone) {
		return nil, vaulterr.NewRemoteUnavailableError("sqlite query records", err)
	}
	return out, nil
}
