package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

// MemoryStore implements MetadataStore in process memory. It backs tests
// and the "memory" metadata type.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.Record

	// FailPut, when set, is consulted before every Put and lets tests
	// inject store failures.
	FailPut func(key string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]models.Record),
	}
}

func (s *MemoryStore) Connect(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) Migrate(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Health(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	if !ok {
		return nil, vaulterr.NewNotFoundError(key, "record")
	}
	clone := record.Clone()
	return &clone, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, record *models.Record, merge bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPut != nil {
		if err := s.FailPut(key); err != nil {
			return err
		}
	}

	next := record.Clone()
	next.Key = key
	if stored, ok := s.records[key]; ok && merge {
		next = models.Merge(stored, next)
	}
	s.records[key] = next
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, predicate Predicate, limit int) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []models.Record
	for _, key := range keys {
		record := s.records[key].Clone()
		if !accept(predicate, &record) {
			continue
		}
		out = append(out, record)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
