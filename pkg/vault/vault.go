// Package vault composes the blob store, the metadata index and the
// consistency components into the document operations consumed by the UI
// layer.
package vault

import (
	"context"
	"time"

	"github.com/mwantia/docsync/pkg/blob"
	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/db/store"
	"github.com/mwantia/docsync/pkg/deadline"
	"github.com/mwantia/docsync/pkg/log"
	"github.com/mwantia/docsync/pkg/metrics"
	"github.com/mwantia/docsync/pkg/mover"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/reconcile"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

const (
	DefaultSearchCap  = 500
	DefaultRecentDays = 7
)

type Options struct {
	BusinessDays int
	SearchCap    int
	RecentDays   int
	SystemPrefix string
	Marker       string
	MoveWorkers  int
	Overwrite    bool
}

func DefaultOptions() Options {
	sanitizer := paths.DefaultSanitizer()
	return Options{
		BusinessDays: deadline.DefaultBusinessDays,
		SearchCap:    DefaultSearchCap,
		RecentDays:   DefaultRecentDays,
		SystemPrefix: sanitizer.SystemPrefix,
		Marker:       sanitizer.Marker,
		MoveWorkers:  mover.DefaultWorkers,
		Overwrite:    true,
	}
}

// Vault is the orchestrating facade. It holds no mutable state of its own
// beyond the store clients and the in-flight repairs of its Reconciler.
type Vault struct {
	blobs     blob.Store
	meta      store.MetadataStore
	repairer  *reconcile.Repairer
	mover     *mover.TreeMover
	tracker   deadline.Tracker
	sanitizer paths.Sanitizer
	log       log.LoggerService
	metrics   *metrics.Metrics
	opts      Options
	now       func() time.Time
}

func New(blobs blob.Store, meta store.MetadataStore, logger log.LoggerService, m *metrics.Metrics, opts Options) *Vault {
	if opts.SearchCap <= 0 {
		opts.SearchCap = DefaultSearchCap
	}
	if opts.RecentDays <= 0 {
		opts.RecentDays = DefaultRecentDays
	}

	return &Vault{
		blobs:    blobs,
		meta:     meta,
		repairer: reconcile.NewRepairer(meta, logger.Named("reconcile"), m),
		mover: mover.New(blobs, meta, logger.Named("mover"), m, mover.Options{
			Workers:   opts.MoveWorkers,
			Overwrite: opts.Overwrite,
		}),
		tracker:   deadline.NewTracker(opts.BusinessDays),
		sanitizer: paths.NewSanitizer(opts.SystemPrefix, opts.Marker),
		log:       logger,
		metrics:   m,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source for uploads, moves, deadlines and the
// recent filter.
func (v *Vault) WithClock(now func() time.Time) *Vault {
	v.now = now
	v.mover.WithClock(now)
	return v
}

// Health reports whether the metadata index is reachable.
func (v *Vault) Health(ctx context.Context) error {
	return v.meta.Health(ctx)
}

// Close waits for pending metadata repairs. The stores are owned and closed
// by the caller.
func (v *Vault) Close() error {
	v.repairer.Wait()
	return nil
}

// lookup returns the record stored for p, or nil when there is none.
func (v *Vault) lookup(ctx context.Context, p paths.Path) (*models.Record, error) {
	record, err := v.meta.Get(ctx, paths.Encode(p))
	if vaulterr.IsNotFound(err) {
		return nil, nil
	}
	return record, err
}

// document resolves p to an existing, non-sentinel document path.
func document(raw string) (paths.Path, error) {
	p := paths.Clean(raw)
	if p.IsRoot() {
		return p, vaulterr.NewInvalidPathError(p.String(), "the root is not a document")
	}
	if p.Base() == blob.Sentinel {
		return p, vaulterr.NewInvalidPathError(p.String(), "reserved name")
	}
	return p, nil
}
