package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

var recordPrefix = []byte("rec:")

// Conflicting merge writes are retried by the client; this is the only
// retry the metadata index performs.
const badgerConflictRetries = 3

// BadgerStore implements MetadataStore on an embedded BadgerDB.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// BadgerConfig holds BadgerDB-specific configuration
type BadgerConfig struct {
	// Path is the data directory. An empty path opens an in-memory database.
	Path string
}

func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

func keyRecord(key string) []byte {
	return append(append([]byte{}, recordPrefix...), key...)
}

func (s *BadgerStore) Connect(ctx context.Context) error {
	return s.Health(ctx)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Migrate is a no-op; records are schemaless JSON values.
func (s *BadgerStore) Migrate(ctx context.Context) error {
	return nil
}

func (s *BadgerStore) Health(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return vaulterr.NewRemoteUnavailableError("badger health", errors.New("database closed"))
	}
	return nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record models.Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyRecord(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, vaulterr.NewNotFoundError(key, "record")
	}
	if err != nil {
		return nil, vaulterr.NewRemoteUnavailableError("badger get record", err)
	}
	return &record, nil
}

func (s *BadgerStore) Put(ctx context.Context, key string, record *models.Record, merge bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	for attempt := 0; attempt < badgerConflictRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			next := record.Clone()
			next.Key = key

			if merge {
				item, err := txn.Get(keyRecord(key))
				switch {
				case err == nil:
					var stored models.Record
					if err := item.Value(func(val []byte) error {
						return json.Unmarshal(val, &stored)
					}); err != nil {
						return err
					}
					next = models.Merge(stored, next)
				case !errors.Is(err, badger.ErrKeyNotFound):
					return err
				}
			}

			data, err := json.Marshal(&next)
			if err != nil {
				return err
			}
			return txn.Set(keyRecord(key), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return vaulterr.NewRemoteUnavailableError("badger put record", err)
	}
	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(keyRecord(key))
	})
	if err != nil {
		return vaulterr.NewRemoteUnavailableError("badger delete record", err)
	}
	return nil
}

func (s *BadgerStore) Query(ctx context.Context, predicate Predicate, limit int) ([]models.Record, error) {
	var out []models.Record

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(recordPrefix); it.ValidForPrefix(recordPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record models.Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			if !accept(predicate, &record) {
				continue
			}
			out = append(out, record)
			if limit > 0 && len(out) >= limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, vaulterr.NewRemoteUnavailableError("badger query records", err)
	}
	return out, nil
}
