package blob

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

type memoryObject struct {
	data []byte
	meta Object
}

// MemoryStore is an in-process Store used by tests and the "memory" blob type.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[paths.Path]memoryObject
	now     func() time.Time

	// Fail, when set, is consulted before every call with the operation
	// name ("list", "get", "stat", "put", "delete") and lets tests inject failures.
	Fail func(op string, p paths.Path) error

	calls int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[paths.Path]memoryObject),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for object timestamps.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) check(op string, p paths.Path) error {
	s.calls++
	if s.Fail != nil {
		return s.Fail(op, p)
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix paths.Path) (Listing, error) {
	if err := ctx.Err(); err != nil {
		return Listing{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("list", prefix); err != nil {
		return Listing{}, err
	}

	var listing Listing
	seen := make(map[paths.Path]struct{})
	for p, obj := range s.objects {
		if !p.IsWithin(prefix) {
			continue
		}
		rel := p.Rel(prefix)
		if first, _, nested := strings.Cut(rel, "/"); nested {
			sub := prefix.Join(first)
			if _, ok := seen[sub]; !ok {
				seen[sub] = struct{}{}
				listing.SubPrefixes = append(listing.SubPrefixes, sub)
			}
			continue
		}
		listing.Items = append(listing.Items, obj.meta)
	}

	sort.Slice(listing.Items, func(i, j int) bool { return listing.Items[i].Path < listing.Items[j].Path })
	slices.Sort(listing.SubPrefixes)
	return listing, nil
}

func (s *MemoryStore) Get(ctx context.Context, p paths.Path) ([]byte, Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, Object{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("get", p); err != nil {
		return nil, Object{}, err
	}

	obj, ok := s.objects[p]
	if !ok {
		return nil, Object{}, vaulterr.NewNotFoundError(p.String(), "blob")
	}
	return slices.Clone(obj.data), obj.meta, nil
}

func (s *MemoryStore) Stat(ctx context.Context, p paths.Path) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("stat", p); err != nil {
		return Object{}, err
	}

	obj, ok := s.objects[p]
	if !ok {
		return Object{}, vaulterr.NewNotFoundError(p.String(), "blob")
	}
	return obj.meta, nil
}

func (s *MemoryStore) Put(ctx context.Context, p paths.Path, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("put", p); err != nil {
		return err
	}

	now := s.now()
	meta := Object{
		Path:        p,
		Size:        int64(len(data)),
		ContentType: DetectContentType(p.Base(), data),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if prev, ok := s.objects[p]; ok {
		meta.CreatedAt = prev.meta.CreatedAt
	}

	s.objects[p] = memoryObject{data: slices.Clone(data), meta: meta}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, p paths.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete", p); err != nil {
		return err
	}

	delete(s.objects, p)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Rename moves an object without touching metadata, simulating an
// out-of-band change made directly against the blob store.
func (s *MemoryStore) Rename(from, to paths.Path) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[from]
	if !ok {
		return false
	}
	delete(s.objects, from)
	obj.meta.Path = to
	obj.meta.UpdatedAt = s.now()
	s.objects[to] = obj
	return true
}

// Paths returns every stored path in order.
func (s *MemoryStore) Paths() []paths.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]paths.Path, 0, len(s.objects))
	for p := range s.objects {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Calls returns how many store operations were attempted.
func (s *MemoryStore) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}
