package mover

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/docsync/pkg/blob"
	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/db/store"
	"github.com/mwantia/docsync/pkg/log"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

var (
	created = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	later   = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
)

// countingStore counts every metadata call.
type countingStore struct {
	store.MetadataStore
	calls atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, key string) (*models.Record, error) {
	c.calls.Add(1)
	return c.MetadataStore.Get(ctx, key)
}

func (c *countingStore) Put(ctx context.Context, key string, record *models.Record, merge bool) error {
	c.calls.Add(1)
	return c.MetadataStore.Put(ctx, key, record, merge)
}

func (c *countingStore) Delete(ctx context.Context, key string) error {
	c.calls.Add(1)
	return c.MetadataStore.Delete(ctx, key)
}

func (c *countingStore) Query(ctx context.Context, predicate store.Predicate, limit int) ([]models.Record, error) {
	c.calls.Add(1)
	return c.MetadataStore.Query(ctx, predicate, limit)
}

type fixture struct {
	blobs *blob.MemoryStore
	meta  *countingStore
	mover *TreeMover
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	blobs := blob.NewMemoryStore()
	meta := &countingStore{MetadataStore: store.NewMemoryStore()}
	return &fixture{
		blobs: blobs,
		meta:  meta,
		mover: New(blobs, meta, log.Discard(), nil, opts).WithClock(func() time.Time { return later }),
	}
}

func (f *fixture) seed(t *testing.T, p string, edit func(*models.Record)) {
	t.Helper()
	ctx := context.Background()
	path := paths.Clean(p)

	require.NoError(t, f.blobs.Put(ctx, path, []byte("content of "+p)))
	record := models.Record{
		Key:        paths.Encode(path),
		Path:       path.String(),
		Name:       path.Base(),
		CreatedAt:  created,
		UpdatedAt:  created,
		UploadedBy: "ana",
	}
	if edit != nil {
		edit(&record)
	}
	require.NoError(t, f.meta.Put(ctx, record.Key, &record, false))
}

func (f *fixture) record(t *testing.T, p string) *models.Record {
	t.Helper()
	record, err := f.meta.Get(context.Background(), paths.Encode(paths.Clean(p)))
	require.NoError(t, err)
	return record
}

func (f *fixture) recordsUnder(t *testing.T, folder string) []models.Record {
	t.Helper()
	root := paths.Clean(folder)
	records, err := f.meta.Query(context.Background(), func(r *models.Record) bool {
		return paths.Path(r.Path).IsWithin(root)
	}, 0)
	require.NoError(t, err)
	return records
}

func (f *fixture) blobsUnder(folder string) []paths.Path {
	root := paths.Clean(folder)
	var out []paths.Path
	for _, p := range f.blobs.Paths() {
		if p.IsWithin(root) {
			out = append(out, p)
		}
	}
	return out
}

func TestMove_IntoOwnDescendantIsInvalid(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	_, err := f.mover.Move(context.Background(), Operation{Source: "/a/b", Dest: "/a/b/c", Kind: KindFolder})

	require.Error(t, err)
	assert.True(t, vaulterr.IsInvalidMove(err))
	assert.True(t, errors.Is(err, vaulterr.InvalidMove))
	assert.Equal(t, 0, f.blobs.Calls())
}

func TestMove_OntoFolderMarkerIsInvalid(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.seed(t, "/A/report.pdf", nil)
	blobCalls, metaCalls := f.blobs.Calls(), f.meta.calls.Load()

	for _, kind := range []Kind{KindFile, KindFolder} {
		_, err := f.mover.Move(context.Background(), Operation{Source: "/A/report.pdf", Dest: "/B/" + blob.Sentinel, Kind: kind})
		require.Error(t, err)
		assert.True(t, vaulterr.IsInvalidPath(err))
	}

	assert.Equal(t, blobCalls, f.blobs.Calls())
	assert.Equal(t, metaCalls, f.meta.calls.Load())
	assert.Equal(t, []paths.Path{"/A/report.pdf"}, f.blobsUnder("/A"))
	assert.NotNil(t, f.record(t, "/A/report.pdf"))
}

func TestMove_FolderKindOnFileIsInvalid(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.seed(t, "/A/report.pdf", nil)

	_, err := f.mover.Move(context.Background(), Operation{Source: "/A/report.pdf", Dest: "/B/report.pdf", Kind: KindFolder})
	require.Error(t, err)
	assert.True(t, vaulterr.IsInvalidMove(err))
	assert.Equal(t, []paths.Path{"/A/report.pdf"}, f.blobsUnder("/A"))
	assert.Empty(t, f.blobsUnder("/B"))

	// A folder with nothing left under it is still a successful move.
	result, err := f.mover.Move(context.Background(), Operation{Source: "/gone", Dest: "/B/gone", Kind: KindFolder})
	require.NoError(t, err)
	assert.Empty(t, result.Moved)
}

func TestMove_SiblingWithSharedPrefixIsValid(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.seed(t, "/a/b/x.pdf", nil)

	_, err := f.mover.Move(context.Background(), Operation{Source: "/a/b", Dest: "/a/bc", Kind: KindFolder})

	require.NoError(t, err)
	assert.Equal(t, []paths.Path{"/a/bc/x.pdf"}, f.blobs.Paths())
}

func TestMove_RootIsInvalid(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	_, err := f.mover.Move(context.Background(), Operation{Source: "/", Dest: "/x", Kind: KindFolder})
	assert.True(t, vaulterr.IsInvalidMove(err))

	_, err = f.mover.Move(context.Background(), Operation{Source: "/x", Dest: "/", Kind: KindFolder})
	assert.True(t, vaulterr.IsInvalidMove(err))
}

func TestMove_SamePathIsNoop(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.seed(t, "/A/report.pdf", nil)
	blobCalls, metaCalls := f.blobs.Calls(), f.meta.calls.Load()

	result, err := f.mover.Move(context.Background(), Operation{Source: "/A/report.pdf", Dest: "/A/report.pdf"})

	require.NoError(t, err)
	assert.Empty(t, result.Moved)
	assert.Equal(t, blobCalls, f.blobs.Calls())
	assert.Equal(t, metaCalls, f.meta.calls.Load())
}

func TestMove_File(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.seed(t, "/A/report.pdf", func(r *models.Record) {
		r.Completed = true
		r.CompletedBy = "ana"
		r.Starred = true
		r.Keywords = []string{"report", "report.pdf"}
	})

	result, err := f.mover.Move(context.Background(), Operation{Source: "/A/report.pdf", Dest: "/B/report.pdf", Kind: KindFile})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, []paths.Path{"/B/report.pdf"}, result.Moved)

	assert.Equal(t, []paths.Path{"/B/report.pdf"}, f.blobs.Paths())
	data, _, err := f.blobs.Get(context.Background(), "/B/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "content of /A/report.pdf", string(data))

	moved := f.record(t, "/B/report.pdf")
	assert.Equal(t, "/B/report.pdf", moved.Path)
	assert.Equal(t, paths.Encode("/B/report.pdf"), moved.Key)
	assert.True(t, moved.Completed)
	assert.Equal(t, "ana", moved.CompletedBy)
	assert.True(t, moved.Starred)
	assert.Equal(t, "ana", moved.UploadedBy)
	assert.Equal(t, created, moved.CreatedAt)
	assert.Equal(t, later, moved.UpdatedAt)
	assert.Equal(t, []string{"report", "report.pdf"}, moved.Keywords)

	_, err = f.meta.Get(context.Background(), paths.Encode("/A/report.pdf"))
	assert.True(t, vaulterr.IsNotFound(err))
}

func TestMove_RenameRefreshesNameAndKeywords(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.seed(t, "/A/draft.pdf", func(r *models.Record) { r.Reviewed = true })

	_, err := f.mover.Move(context.Background(), Operation{Source: "/A/draft.pdf", Dest: "/A/final pump.pdf"})
	require.NoError(t, err)

	moved := f.record(t, "/A/final pump.pdf")
	assert.Equal(t, "final pump.pdf", moved.Name)
	assert.Contains(t, moved.Keywords, "pump")
	assert.True(t, moved.Reviewed)
}

func TestMove_MissingSourceIsNotFound(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	_, err := f.mover.Move(context.Background(), Operation{Source: "/A/none.pdf", Dest: "/B/none.pdf"})
	assert.True(t, vaulterr.IsNotFound(err))
}

func TestMove_FileWithoutRecordWritesNoRecord(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	require.NoError(t, f.blobs.Put(context.Background(), "/A/orphan.pdf", []byte("x")))

	_, err := f.mover.Move(context.Background(), Operation{Source: "/A/orphan.pdf", Dest: "/B/orphan.pdf"})
	require.NoError(t, err)

	assert.Equal(t, []paths.Path{"/B/orphan.pdf"}, f.blobs.Paths())
	assert.Empty(t, f.recordsUnder(t, "/"))
}

func TestMove_Folder(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.seed(t, "/clients/X/a.pdf", nil)
	f.seed(t, "/clients/X/b.pdf", func(r *models.Record) {
		r.Reviewed = true
		r.ReviewedBy = "qa"
	})
	f.seed(t, "/clients/X/sub/c.pdf", func(r *models.Record) { r.UploadedBy = "juan" })
	require.NoError(t, f.blobs.Put(context.Background(), paths.Path("/clients/X/empty").Join(blob.Sentinel), nil))
	f.seed(t, "/clients/Other/keep.pdf", nil)

	result, err := f.mover.Move(context.Background(), Operation{Source: "/clients/X", Dest: "/clients/Y", Kind: KindFolder})
	require.NoError(t, err)
	assert.Len(t, result.Moved, 4)

	assert.Empty(t, f.blobsUnder("/clients/X"))
	assert.Empty(t, f.recordsUnder(t, "/clients/X"))
	assert.ElementsMatch(t, []paths.Path{
		"/clients/Y/a.pdf",
		"/clients/Y/b.pdf",
		"/clients/Y/empty/.keep",
		"/clients/Y/sub/c.pdf",
	}, f.blobsUnder("/clients/Y"))

	records := f.recordsUnder(t, "/clients/Y")
	require.Len(t, records, 3)

	b := f.record(t, "/clients/Y/b.pdf")
	assert.True(t, b.Reviewed)
	assert.Equal(t, "qa", b.ReviewedBy)
	assert.False(t, f.record(t, "/clients/Y/a.pdf").Reviewed)
	assert.Equal(t, "juan", f.record(t, "/clients/Y/sub/c.pdf").UploadedBy)

	assert.Len(t, f.blobsUnder("/clients/Other"), 1)
}

func TestMove_CanceledContextStillCompletes(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.seed(t, "/X/a.pdf", nil)
	f.seed(t, "/X/b.pdf", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.mover.Move(ctx, Operation{Source: "/X", Dest: "/Y", Kind: KindFolder})
	require.NoError(t, err)
	assert.Len(t, f.blobsUnder("/Y"), 2)
}

func TestMove_PartialFailureThenRetryConverges(t *testing.T) {
	f := newFixture(t, Options{Workers: 2, Overwrite: true})
	f.seed(t, "/X/a.pdf", func(r *models.Record) { r.Completed = true })
	f.seed(t, "/X/b.pdf", nil)
	f.seed(t, "/X/c.pdf", func(r *models.Record) { r.Starred = true })

	f.blobs.Fail = func(op string, p paths.Path) error {
		if op == "put" && p == "/Y/b.pdf" {
			return vaulterr.NewRemoteUnavailableError("put", errors.New("injected"))
		}
		return nil
	}

	_, err := f.mover.Move(context.Background(), Operation{Source: "/X", Dest: "/Y", Kind: KindFolder})
	require.Error(t, err)
	assert.True(t, vaulterr.IsPartialFailure(err))

	var verr *vaulterr.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"/X/b.pdf"}, verr.FailedPaths())

	// No rollback: the other leaves stay moved.
	assert.ElementsMatch(t, []paths.Path{"/Y/a.pdf", "/Y/c.pdf"}, f.blobsUnder("/Y"))
	assert.Equal(t, []paths.Path{"/X/b.pdf"}, f.blobsUnder("/X"))

	f.blobs.Fail = nil
	result, err := f.mover.Move(context.Background(), Operation{Source: "/X", Dest: "/Y", Kind: KindFolder})
	require.NoError(t, err)
	assert.Equal(t, []paths.Path{"/Y/b.pdf"}, result.Moved)

	assert.Empty(t, f.blobsUnder("/X"))
	assert.Len(t, f.blobsUnder("/Y"), 3)
	assert.True(t, f.record(t, "/Y/a.pdf").Completed)
	assert.True(t, f.record(t, "/Y/c.pdf").Starred)

	// A third run finds nothing left to do.
	result, err = f.mover.Move(context.Background(), Operation{Source: "/X", Dest: "/Y", Kind: KindFolder})
	require.NoError(t, err)
	assert.Empty(t, result.Moved)
}

func TestMove_ConflictWithoutOverwrite(t *testing.T) {
	f := newFixture(t, Options{Workers: 1, Overwrite: false})
	f.seed(t, "/A/report.pdf", nil)
	f.seed(t, "/B/report.pdf", nil)

	_, err := f.mover.Move(context.Background(), Operation{Source: "/A/report.pdf", Dest: "/B/report.pdf"})
	assert.True(t, vaulterr.IsConflict(err))
	assert.Len(t, f.blobsUnder("/A"), 1)
}

func TestMove_OverwriteReplacesDestination(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.seed(t, "/A/report.pdf", func(r *models.Record) { r.Completed = true })
	f.seed(t, "/B/report.pdf", nil)

	_, err := f.mover.Move(context.Background(), Operation{Source: "/A/report.pdf", Dest: "/B/report.pdf"})
	require.NoError(t, err)

	data, _, err := f.blobs.Get(context.Background(), "/B/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "content of /A/report.pdf", string(data))
	assert.True(t, f.record(t, "/B/report.pdf").Completed)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindFile, k)

	k, err = ParseKind("folder")
	require.NoError(t, err)
	assert.Equal(t, KindFolder, k)

	_, err = ParseKind("tree")
	assert.Error(t, err)
}
