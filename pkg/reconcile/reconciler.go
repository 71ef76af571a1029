// Package reconcile heals drift between the blob store and the metadata
// index on the read path.
package reconcile

import (
	"context"
	"sync"

	"github.com/mwantia/docsync/pkg/blob"
	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/db/store"
	"github.com/mwantia/docsync/pkg/log"
	"github.com/mwantia/docsync/pkg/metrics"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/search"
)

const (
	ReasonMissing = "missing"
	ReasonRenamed = "renamed"
	ReasonMoved   = "moved"
)

// Reconciler turns an enumerated blob and its optional metadata record into
// a consistent record, repairing the index when they disagree.
type Reconciler interface {
	Reconcile(ctx context.Context, obj blob.Object, existing *models.Record) models.Record
}

// Repairer is the Reconciler backed by a MetadataStore. Repairs are written
// in the background; a failed write is logged and retried naturally by the
// next read of the same object.
type Repairer struct {
	meta    store.MetadataStore
	log     log.LoggerService
	metrics *metrics.Metrics

	wg sync.WaitGroup
}

var _ Reconciler = (*Repairer)(nil)

func NewRepairer(meta store.MetadataStore, logger log.LoggerService, m *metrics.Metrics) *Repairer {
	return &Repairer{
		meta:    meta,
		log:     logger,
		metrics: m,
	}
}

// Drift reports whether existing no longer describes obj, and why.
func Drift(obj blob.Object, existing *models.Record) (string, bool) {
	switch {
	case existing == nil:
		return ReasonMissing, true
	case existing.Name != obj.Name():
		return ReasonRenamed, true
	case existing.Path != obj.Path.String():
		return ReasonMoved, true
	}
	return "", false
}

// Project is the record blob truth alone implies, with default workflow
// flags.
func Project(obj blob.Object) models.Record {
	return models.Record{
		Key:         paths.Encode(obj.Path),
		Path:        obj.Path.String(),
		Name:        obj.Name(),
		Size:        obj.Size,
		ContentType: obj.ContentType,
		CreatedAt:   obj.CreatedAt,
		UpdatedAt:   obj.UpdatedAt,
		Keywords:    search.Tokens(obj.Name()),
	}
}

// Resolve returns the consistent record for obj without writing it. A
// drifted record is rebuilt from blob truth and keeps the workflow flags of
// existing.
func Resolve(obj blob.Object, existing *models.Record) (models.Record, string, bool) {
	reason, drifted := Drift(obj, existing)
	if !drifted {
		return existing.Clone(), "", false
	}

	repaired := Project(obj)
	if existing != nil {
		repaired.SetFlags(existing.Flags())
		if repaired.ContentType == "" {
			repaired.ContentType = existing.ContentType
		}
	}
	return repaired, reason, true
}

func (r *Repairer) Reconcile(ctx context.Context, obj blob.Object, existing *models.Record) models.Record {
	repaired, reason, drifted := Resolve(obj, existing)
	if !drifted || obj.IsSentinel() {
		return repaired
	}

	r.persist(ctx, reason, repaired)
	return repaired
}

func (r *Repairer) persist(ctx context.Context, reason string, record models.Record) {
	// The repair outlives the request that triggered it.
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		err := r.meta.Put(ctx, record.Key, &record, true)
		r.metrics.RecordRepair(reason, err)
		if err != nil {
			r.log.Warn("Failed to repair metadata for '%s' (%s): %v", record.Path, reason, err)
			return
		}
		r.log.Debug("Repaired metadata for '%s' (%s)", record.Path, reason)
	}()
}

// Wait blocks until every in-flight repair has finished.
func (r *Repairer) Wait() {
	r.wg.Wait()
}
