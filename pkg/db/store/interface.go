package store

import (
	"context"

	"github.com/mwantia/docsync/pkg/db/models"
)

// Predicate selects records during a Query. A nil predicate selects all.
type Predicate func(*models.Record) bool

// MetadataStore defines the interface for the metadata index
type MetadataStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Get returns the record stored under key, or a vaulterr NotFound error.
	Get(ctx context.Context, key string) (*models.Record, error)

	// Put stores record under key. With merge set, an existing record is
	// combined using models.Merge inside the same write; otherwise it is
	// replaced.
	Put(ctx context.Context, key string, record *models.Record, merge bool) error

	// Delete removes the record under key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// Query returns up to limit records accepted by predicate, in key order.
	// A limit <= 0 means no limit.
	Query(ctx context.Context, predicate Predicate, limit int) ([]models.Record, error)
}

func accept(predicate Predicate, record *models.Record) bool {
	return predicate == nil || predicate(record)
}
