package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

type factory func(t *testing.T) MetadataStore

func TestMemoryStore(t *testing.T) {
	runConformance(t, func(t *testing.T) MetadataStore {
		return NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runConformance(t, func(t *testing.T) MetadataStore {
		s, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "meta.db")})
		require.NoError(t, err)
		require.NoError(t, s.Connect(context.Background()))
		require.NoError(t, s.Migrate(context.Background()))
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestBadgerStore(t *testing.T) {
	runConformance(t, func(t *testing.T) MetadataStore {
		s, err := NewBadgerStore(BadgerConfig{Path: filepath.Join(t.TempDir(), "badger")})
		require.NoError(t, err)
		require.NoError(t, s.Connect(context.Background()))
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func runConformance(t *testing.T, newStore factory) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(context.Background(), "missing")
		assert.True(t, vaulterr.IsNotFound(err))
	})

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

		rec := &models.Record{
			Path:        "/A/report.pdf",
			Name:        "report.pdf",
			Size:        42,
			ContentType: "application/pdf",
			CreatedAt:   created,
			UpdatedAt:   created,
			Keywords:    []string{"pdf", "report", "report.pdf"},
			UploadedBy:  "ana",
		}
		require.NoError(t, s.Put(ctx, "A%2Freport.pdf", rec, false))

		got, err := s.Get(ctx, "A%2Freport.pdf")
		require.NoError(t, err)
		assert.Equal(t, "A%2Freport.pdf", got.Key)
		assert.Equal(t, "/A/report.pdf", got.Path)
		assert.Equal(t, int64(42), got.Size)
		assert.True(t, created.Equal(got.CreatedAt))
		assert.True(t, created.Equal(got.UpdatedAt))
		assert.Equal(t, []string{"pdf", "report", "report.pdf"}, got.Keywords)
		assert.Equal(t, "ana", got.UploadedBy)
	})

	t.Run("PutMergePreservesFlags", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "k", &models.Record{Path: "/k", Name: "old", Completed: true, CompletedBy: "ana"}, false))
		require.NoError(t, s.Put(ctx, "k", &models.Record{Path: "/k", Name: "new", Size: 7}, true))

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Name)
		assert.Equal(t, int64(7), got.Size)
		assert.True(t, got.Completed)
		assert.Equal(t, "ana", got.CompletedBy)
	})

	t.Run("PutReplaceResetsFlags", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "k", &models.Record{Path: "/k", Name: "k", Starred: true}, false))
		require.NoError(t, s.Put(ctx, "k", &models.Record{Path: "/k", Name: "k"}, false))

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, got.Starred)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "k", &models.Record{Path: "/k", Name: "k"}, false))
		require.NoError(t, s.Delete(ctx, "k"))
		require.NoError(t, s.Delete(ctx, "k"))

		_, err := s.Get(ctx, "k")
		assert.True(t, vaulterr.IsNotFound(err))
	})

	t.Run("QueryPredicateAndLimit", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for i := 0; i < 10; i++ {
			key := fmt.Sprintf("k%02d", i)
			require.NoError(t, s.Put(ctx, key, &models.Record{Path: "/" + key, Name: key, Starred: i%2 == 0}, false))
		}

		all, err := s.Query(ctx, nil, 0)
		require.NoError(t, err)
		assert.Len(t, all, 10)
		assert.Equal(t, "k00", all[0].Key)
		assert.Equal(t, "k09", all[9].Key)

		starred, err := s.Query(ctx, func(r *models.Record) bool { return r.Starred }, 0)
		require.NoError(t, err)
		assert.Len(t, starred, 5)

		capped, err := s.Query(ctx, func(r *models.Record) bool { return r.Starred }, 3)
		require.NoError(t, err)
		require.Len(t, capped, 3)
		assert.Equal(t, []string{"k00", "k02", "k04"}, []string{capped[0].Key, capped[1].Key, capped[2].Key})
	})

	t.Run("ConcurrentMergePuts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "k", &models.Record{Path: "/k", Name: "k", Reviewed: true, ReviewedBy: "qa"}, false))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.Put(ctx, "k", &models.Record{Path: "/k", Name: "k", Size: 99}, true)
			}()
		}
		wg.Wait()

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, got.Reviewed)
		assert.Equal(t, "qa", got.ReviewedBy)
		assert.Equal(t, int64(99), got.Size)
	})
}

func TestMemoryStore_FailPut(t *testing.T) {
	s := NewMemoryStore()
	s.FailPut = func(key string) error {
		return vaulterr.NewRemoteUnavailableError("injected", nil)
	}

	err := s.Put(context.Background(), "k", &models.Record{}, true)
	assert.True(t, vaulterr.IsRemoteUnavailable(err))
	assert.Equal(t, 0, s.Len())
}
