package vault

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/mwantia/docsync/pkg/blob"
	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/mover"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/reconcile"
	"github.com/mwantia/docsync/pkg/search"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

// Upload writes data at p and records uploader. Re-uploading to an existing
// path merges into the stored record so earlier workflow flags survive.
func (v *Vault) Upload(ctx context.Context, p paths.Path, data []byte, uploader string) (models.Record, error) {
	p, err := document(p.String())
	if err != nil {
		return models.Record{}, err
	}

	if err := v.blobs.Put(ctx, p, data); err != nil {
		v.metrics.RecordUpload(err)
		return models.Record{}, fmt.Errorf("failed to store '%s': %w", p, err)
	}

	now := v.now()
	record := models.Record{
		Key:         paths.Encode(p),
		Path:        p.String(),
		Name:        p.Base(),
		Size:        int64(len(data)),
		ContentType: blob.DetectContentType(p.Base(), data),
		CreatedAt:   now,
		UpdatedAt:   now,
		Keywords:    search.Tokens(p.Base()),
		UploadedBy:  strings.TrimSpace(uploader),
	}

	existing, err := v.lookup(ctx, p)
	if err != nil {
		v.metrics.RecordUpload(err)
		return models.Record{}, fmt.Errorf("failed to read metadata for '%s': %w", p, err)
	}
	if existing != nil {
		record.CreatedAt = existing.CreatedAt
	}

	if err := v.meta.Put(ctx, record.Key, &record, true); err != nil {
		v.metrics.RecordUpload(err)
		return models.Record{}, fmt.Errorf("failed to index '%s': %w", p, err)
	}
	v.metrics.RecordUpload(nil)

	if existing != nil {
		record = models.Merge(*existing, record)
	}
	v.log.Debug("Uploaded '%s' (%d bytes) for '%s'", p, record.Size, record.UploadedBy)
	return record, nil
}

// Download returns the content and attributes of the document at p.
func (v *Vault) Download(ctx context.Context, p paths.Path) ([]byte, blob.Object, error) {
	p, err := document(p.String())
	if err != nil {
		return nil, blob.Object{}, err
	}
	return v.blobs.Get(ctx, p)
}

// Delete removes the metadata record first and the blob second, so an
// interrupted delete can leave an orphan blob but never a record pointing
// at missing content.
func (v *Vault) Delete(ctx context.Context, p paths.Path) error {
	p, err := document(p.String())
	if err != nil {
		return err
	}

	err = v.delete(ctx, p)
	v.metrics.RecordDelete(err)
	return err
}

func (v *Vault) delete(ctx context.Context, p paths.Path) error {
	if err := v.meta.Delete(ctx, paths.Encode(p)); err != nil {
		return fmt.Errorf("failed to delete metadata for '%s': %w", p, err)
	}
	if err := v.blobs.Delete(ctx, p); err != nil {
		return fmt.Errorf("failed to delete '%s': %w", p, err)
	}
	return nil
}

// Tally is the outcome of a batch operation.
type Tally struct {
	Succeeded int                `json:"succeeded"`
	Failed    []vaulterr.Failure `json:"failed"`
}

// Err returns a PartialFailure describing the failed items, or nil.
func (t Tally) Err(path string) error {
	if len(t.Failed) == 0 {
		return nil
	}
	return vaulterr.NewPartialFailureError(path, t.Failed)
}

func (t *Tally) add(p paths.Path, err error) {
	if err != nil {
		t.Failed = append(t.Failed, vaulterr.Failure{Path: p.String(), Err: err})
		return
	}
	t.Succeeded++
}

// BatchDelete deletes every path independently and tallies the results.
func (v *Vault) BatchDelete(ctx context.Context, targets []paths.Path) Tally {
	id := uuid.NewString()
	tally := v.deleteAll(ctx, targets, func(ctx context.Context, p paths.Path) error {
		return v.Delete(ctx, p)
	})
	v.log.Info("Batch delete %s: %d deleted, %d failed", id[:8], tally.Succeeded, len(tally.Failed))
	return tally
}

func (v *Vault) deleteAll(ctx context.Context, targets []paths.Path, del func(context.Context, paths.Path) error) Tally {
	var (
		mu    sync.Mutex
		tally Tally
	)

	p := pool.New().WithMaxGoroutines(max(v.opts.MoveWorkers, 1))
	for _, target := range targets {
		p.Go(func() {
			err := del(ctx, target)

			mu.Lock()
			defer mu.Unlock()
			tally.add(target, err)
		})
	}
	p.Wait()
	return tally
}

// FlagUpdate sets the workflow flags that are non-nil.
type FlagUpdate struct {
	Completed *bool `json:"completed,omitempty"`
	Reviewed  *bool `json:"reviewed,omitempty"`
	Starred   *bool `json:"starred,omitempty"`
}

func (u FlagUpdate) apply(record *models.Record, actor string) {
	if u.Completed != nil {
		record.Completed = *u.Completed
		record.CompletedBy = ""
		if record.Completed {
			record.CompletedBy = actor
		}
	}
	if u.Reviewed != nil {
		record.Reviewed = *u.Reviewed
		record.ReviewedBy = ""
		if record.Reviewed {
			record.ReviewedBy = actor
		}
	}
	if u.Starred != nil {
		record.Starred = *u.Starred
	}
}

// SetFlags updates the workflow flags of the document at p on behalf of
// actor. The record is replaced rather than merged so flags can be cleared,
// and a drifted record is repaired by this same write.
func (v *Vault) SetFlags(ctx context.Context, p paths.Path, update FlagUpdate, actor string) (Entry, error) {
	obj, existing, err := v.resolve(ctx, p)
	if err != nil {
		return Entry{}, err
	}

	record, _, _ := reconcile.Resolve(obj, existing)
	update.apply(&record, strings.TrimSpace(actor))
	if err := v.meta.Put(ctx, record.Key, &record, false); err != nil {
		return Entry{}, fmt.Errorf("failed to update flags for '%s': %w", p, err)
	}
	return v.entry(record), nil
}

// CreateFolder makes an empty folder listable by writing its sentinel.
func (v *Vault) CreateFolder(ctx context.Context, folder paths.Path) (FolderNode, error) {
	folder = paths.Clean(folder.String())
	if folder.IsRoot() {
		return FolderNode{}, vaulterr.NewInvalidPathError(folder.String(), "the root already exists")
	}

	listing, err := v.blobs.List(ctx, folder)
	if err != nil {
		return FolderNode{}, fmt.Errorf("failed to list '%s': %w", folder, err)
	}
	if len(listing.Items) > 0 || len(listing.SubPrefixes) > 0 {
		return FolderNode{}, vaulterr.NewConflictError(folder.String())
	}

	siblings, err := v.blobs.List(ctx, folder.Parent())
	if err != nil {
		return FolderNode{}, fmt.Errorf("failed to list '%s': %w", folder.Parent(), err)
	}
	for _, obj := range siblings.Items {
		if obj.Path == folder {
			return FolderNode{}, vaulterr.NewConflictError(folder.String())
		}
	}

	if err := v.blobs.Put(ctx, folder.Join(blob.Sentinel), nil); err != nil {
		return FolderNode{}, fmt.Errorf("failed to create '%s': %w", folder, err)
	}
	return FolderNode{Path: folder, Name: folder.Base()}, nil
}

// DeleteFolder deletes every object beneath folder, sentinels included.
func (v *Vault) DeleteFolder(ctx context.Context, folder paths.Path) (Tally, error) {
	folder = paths.Clean(folder.String())
	if folder.IsRoot() {
		return Tally{}, vaulterr.NewInvalidPathError(folder.String(), "the root cannot be deleted")
	}

	objects, failures, err := blob.Walk(ctx, v.blobs, folder)
	if err != nil {
		return Tally{}, fmt.Errorf("failed to list '%s': %w", folder, err)
	}
	if len(objects) == 0 && len(failures) == 0 {
		return Tally{}, vaulterr.NewNotFoundError(folder.String(), "folder")
	}

	targets := make([]paths.Path, 0, len(objects))
	for _, obj := range objects {
		targets = append(targets, obj.Path)
	}

	tally := v.deleteAll(ctx, targets, func(ctx context.Context, p paths.Path) error {
		err := v.delete(ctx, p)
		if p.Base() != blob.Sentinel {
			v.metrics.RecordDelete(err)
		}
		return err
	})
	tally.Failed = append(tally.Failed, failures...)

	v.log.Info("Deleted folder '%s': %d object(s), %d failed", folder, tally.Succeeded, len(tally.Failed))
	return tally, nil
}

// Move relocates a file or folder through the tree mover.
func (v *Vault) Move(ctx context.Context, op mover.Operation) (mover.Result, error) {
	return v.mover.Move(ctx, op)
}

// Rename moves p to a sibling called newName.
func (v *Vault) Rename(ctx context.Context, p paths.Path, newName string, kind mover.Kind) (mover.Result, error) {
	p = paths.Clean(p.String())
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == "." || newName == ".." || strings.ContainsAny(newName, "/\\") {
		return mover.Result{}, vaulterr.NewInvalidPathError(newName, "invalid name")
	}
	if newName == blob.Sentinel {
		return mover.Result{}, vaulterr.NewInvalidPathError(newName, "reserved name")
	}

	return v.mover.Move(ctx, mover.Operation{
		Source: p,
		Dest:   p.Parent().Join(newName),
		Kind:   kind,
	})
}
