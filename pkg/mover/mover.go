// Package mover relocates a file or a whole folder subtree across the blob
// store and the metadata index.
package mover

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/mwantia/docsync/pkg/blob"
	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/db/store"
	"github.com/mwantia/docsync/pkg/log"
	"github.com/mwantia/docsync/pkg/metrics"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/search"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

const DefaultWorkers = 4

type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// ParseKind accepts "file" and "folder"; an empty string means a file.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindFile:
		return KindFile, nil
	case KindFolder:
		return KindFolder, nil
	}
	return "", fmt.Errorf("unknown move kind %q", s)
}

// Operation is one requested relocation.
type Operation struct {
	Source paths.Path `json:"source"`
	Dest   paths.Path `json:"dest"`
	Kind   Kind       `json:"kind"`
}

// Result summarizes a completed move.
type Result struct {
	ID    string       `json:"id"`
	Moved []paths.Path `json:"moved"`
}

type Options struct {
	// Workers bounds concurrent leaf moves during a folder move.
	Workers int
	// Overwrite lets a move replace an existing destination object.
	// Without it an occupied destination fails that leaf with Conflict.
	Overwrite bool
}

func DefaultOptions() Options {
	return Options{
		Workers:   DefaultWorkers,
		Overwrite: true,
	}
}

type TreeMover struct {
	blobs   blob.Store
	meta    store.MetadataStore
	log     log.LoggerService
	metrics *metrics.Metrics
	opts    Options
	now     func() time.Time
}

func New(blobs blob.Store, meta store.MetadataStore, logger log.LoggerService, m *metrics.Metrics, opts Options) *TreeMover {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &TreeMover{
		blobs:   blobs,
		meta:    meta,
		log:     logger,
		metrics: m,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for refreshed UpdatedAt values.
func (m *TreeMover) WithClock(now func() time.Time) *TreeMover {
	m.now = now
	return m
}

// Move relocates op.Source to op.Dest. Once validated the move runs to
// completion even if ctx is canceled. A folder move reports PartialFailure
// listing every leaf that could not be moved; moved leaves stay moved.
func (m *TreeMover) Move(ctx context.Context, op Operation) (Result, error) {
	src, dst := paths.Clean(op.Source.String()), paths.Clean(op.Dest.String())
	if op.Kind == "" {
		op.Kind = KindFile
	}

	if src == dst {
		m.metrics.RecordMove(string(op.Kind), "noop")
		return Result{}, nil
	}
	if err := validate(src, dst); err != nil {
		m.metrics.RecordMove(string(op.Kind), "invalid")
		return Result{}, err
	}

	ctx = context.WithoutCancel(ctx)
	result := Result{ID: uuid.NewString()}
	logger := m.log.Named(result.ID[:8])

	var err error
	switch op.Kind {
	case KindFile:
		err = m.moveLeaf(ctx, src, dst)
		if err == nil {
			result.Moved = append(result.Moved, dst)
		}
	case KindFolder:
		result.Moved, err = m.moveFolder(ctx, logger, src, dst)
	default:
		err = vaulterr.NewInvalidMoveError(src.String(), fmt.Sprintf("unknown kind %q", op.Kind))
	}

	m.metrics.RecordMove(string(op.Kind), outcome(err))
	if err != nil {
		logger.Warn("Move of %s '%s' to '%s' failed: %v", op.Kind, src, dst, err)
		return result, err
	}

	logger.Info("Moved %s '%s' to '%s' (%d object(s))", op.Kind, src, dst, len(result.Moved))
	return result, nil
}

func validate(src, dst paths.Path) error {
	switch {
	case src.IsRoot():
		return vaulterr.NewInvalidMoveError(src.String(), "the root cannot be moved")
	case dst.IsRoot():
		return vaulterr.NewInvalidMoveError(dst.String(), "the root is not a valid destination")
	case dst.IsWithin(src):
		return vaulterr.NewInvalidMoveError(dst.String(), "destination is inside the source")
	case dst.Base() == blob.Sentinel:
		return vaulterr.NewInvalidPathError(dst.String(), "reserved name")
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case vaulterr.IsPartialFailure(err):
		return "partial"
	case vaulterr.IsInvalidMove(err), vaulterr.IsInvalidPath(err):
		return "invalid"
	}
	return "error"
}

// moveLeaf relocates one object, creating the destination in both stores
// before removing the source from either.
func (m *TreeMover) moveLeaf(ctx context.Context, src, dst paths.Path) error {
	data, _, err := m.blobs.Get(ctx, src)
	if err != nil {
		return err
	}

	if !m.opts.Overwrite {
		_, err := m.blobs.Stat(ctx, dst)
		if err == nil {
			return vaulterr.NewConflictError(dst.String())
		}
		if !vaulterr.IsNotFound(err) {
			return err
		}
	}

	if err := m.blobs.Put(ctx, dst, data); err != nil {
		return err
	}

	srcKey := paths.Encode(src)
	record, err := m.meta.Get(ctx, srcKey)
	switch {
	case vaulterr.IsNotFound(err):
		record = nil
	case err != nil:
		return err
	}

	if record != nil {
		moved := relocate(*record, dst, m.now())
		if err := m.meta.Put(ctx, moved.Key, &moved, false); err != nil {
			return err
		}
		if err := m.meta.Delete(ctx, srcKey); err != nil {
			return err
		}
	}

	return m.blobs.Delete(ctx, src)
}

// relocate copies record to dst, refreshing the structural fields a move
// changes and keeping every workflow flag.
func relocate(record models.Record, dst paths.Path, now time.Time) models.Record {
	moved := record.Clone()
	moved.Key = paths.Encode(dst)
	moved.Path = dst.String()
	moved.UpdatedAt = now
	if moved.Name != dst.Base() {
		moved.Name = dst.Base()
		moved.Keywords = search.Tokens(moved.Name)
	}
	return moved
}

func (m *TreeMover) moveFolder(ctx context.Context, logger log.LoggerService, src, dst paths.Path) ([]paths.Path, error) {
	leaves, failures, err := blob.Walk(ctx, m.blobs, src)
	if err != nil {
		return nil, err
	}
	if len(leaves) == 0 && len(failures) == 0 {
		_, err := m.blobs.Stat(ctx, src)
		switch {
		case err == nil:
			return nil, vaulterr.NewInvalidMoveError(src.String(), "source is a file, not a folder")
		case !vaulterr.IsNotFound(err):
			return nil, err
		}
		logger.Debug("Nothing left to move under '%s'", src)
		return nil, nil
	}

	var (
		mu    sync.Mutex
		moved []paths.Path
	)

	p := pool.New().WithMaxGoroutines(m.opts.Workers)
	for _, obj := range leaves {
		leaf := obj.Path
		target := paths.Rebase(leaf, src, dst)
		p.Go(func() {
			err := m.moveLeaf(ctx, leaf, target)
			m.metrics.RecordMovedObject(err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Debug("Failed to move '%s': %v", leaf, err)
				failures = append(failures, vaulterr.Failure{Path: leaf.String(), Err: err})
				return
			}
			moved = append(moved, target)
		})
	}
	p.Wait()

	if len(failures) > 0 {
		return moved, vaulterr.NewPartialFailureError(src.String(), failures)
	}
	return moved, nil
}
