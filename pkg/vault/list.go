package vault

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mwantia/docsync/pkg/access"
	"github.com/mwantia/docsync/pkg/blob"
	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/deadline"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/search"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterReviewed  Filter = "reviewed"
	FilterStarred   Filter = "starred"
	FilterRecent    Filter = "recent"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterCompleted, FilterReviewed, FilterStarred, FilterRecent:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

type ListOptions struct {
	Filter Filter
	Query  string
	Sort   search.Order
}

// FolderNode is a folder derived from a common path prefix. It is never
// persisted.
type FolderNode struct {
	Path paths.Path `json:"path"`
	Name string     `json:"name"`
}

// Entry is a reconciled document as presented to callers.
type Entry struct {
	models.Record
	DisplayName string          `json:"display_name"`
	ParentLabel string          `json:"parent_label"`
	Deadline    deadline.Status `json:"deadline"`
}

type Listing struct {
	Path    paths.Path   `json:"path"`
	Folders []FolderNode `json:"folders"`
	Files   []Entry      `json:"files"`
}

func (v *Vault) entry(record models.Record) Entry {
	return Entry{
		Record:      record,
		DisplayName: v.sanitizer.Clean(record.Name),
		ParentLabel: paths.ParentLabel(paths.Path(record.Path)),
		Deadline:    v.tracker.Evaluate(record.CreatedAt, v.now()),
	}
}

func (e Entry) document() search.Document {
	return search.Document{
		DisplayName: e.DisplayName,
		RawName:     e.Name,
		UploadedBy:  e.UploadedBy,
		ParentLabel: e.ParentLabel,
		Keywords:    e.Keywords,
	}
}

func (e Entry) keys() search.Keys {
	return search.Keys{
		Name:      e.DisplayName,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (f FolderNode) keys() search.Keys {
	return search.Keys{Name: f.Name}
}

func (v *Vault) accepts(filter Filter, e Entry) bool {
	switch filter {
	case FilterPending:
		return !e.Completed
	case FilterCompleted:
		return e.Completed
	case FilterReviewed:
		return e.Reviewed
	case FilterStarred:
		return e.Starred
	case FilterRecent:
		return !e.CreatedAt.Before(v.now().Add(-time.Duration(v.opts.RecentDays) * 24 * time.Hour))
	}
	return true
}

// canList reports whether the caller may enumerate folder at all.
func canList(vis access.Context, folder paths.Path) bool {
	if folder.IsRoot() || vis.IsPrivileged() {
		return true
	}
	return access.CanSeeRootFolder(vis, folder.Segments()[0])
}

// List enumerates the immediate children of folder. Files are reconciled
// against the metadata index, then visibility, the status filter, the
// scoped search and the sort are applied in that order. Status filters
// apply to files only; the query also narrows folders by name.
func (v *Vault) List(ctx context.Context, folder paths.Path, vis access.Context, opts ListOptions) (Listing, error) {
	folder = paths.Clean(folder.String())
	if !canList(vis, folder) {
		return Listing{}, vaulterr.NewNotFoundError(folder.String(), "folder")
	}

	listing, err := v.blobs.List(ctx, folder)
	if err != nil {
		return Listing{}, fmt.Errorf("failed to list '%s': %w", folder, err)
	}

	atRoot := folder.IsRoot()
	terms := search.Terms(opts.Query)
	if len(terms) > 0 {
		v.metrics.RecordSearch("scoped")
	}
	out := Listing{
		Path:    folder,
		Folders: make([]FolderNode, 0, len(listing.SubPrefixes)),
		Files:   make([]Entry, 0, len(listing.Items)),
	}

	for _, sub := range listing.SubPrefixes {
		node := FolderNode{Path: sub, Name: sub.Base()}
		if atRoot && !access.CanSeeRootFolder(vis, node.Name) {
			continue
		}
		if !search.MatchesTerms(search.Document{RawName: node.Name}, terms) {
			continue
		}
		out.Folders = append(out.Folders, node)
	}

	for _, obj := range listing.Items {
		if obj.IsSentinel() {
			continue
		}

		existing, err := v.lookup(ctx, obj.Path)
		if err != nil {
			return Listing{}, fmt.Errorf("failed to read metadata for '%s': %w", obj.Path, err)
		}
		e := v.entry(v.repairer.Reconcile(ctx, obj, existing))

		if atRoot && !access.CanSeeObject(vis, obj.Path, e.UploadedBy) {
			continue
		}
		if !v.accepts(opts.Filter, e) || !search.MatchesTerms(e.document(), terms) {
			continue
		}
		out.Files = append(out.Files, e)
	}

	search.Sort(out.Folders, opts.Sort, FolderNode.keys)
	search.Sort(out.Files, opts.Sort, Entry.keys)
	return out, nil
}

// Stat returns the reconciled entry for a single document.
func (v *Vault) Stat(ctx context.Context, p paths.Path) (Entry, error) {
	obj, existing, err := v.resolve(ctx, p)
	if err != nil {
		return Entry{}, err
	}
	return v.entry(v.repairer.Reconcile(ctx, obj, existing)), nil
}

// resolve reads the blob and the stored record of the document at p.
func (v *Vault) resolve(ctx context.Context, p paths.Path) (blob.Object, *models.Record, error) {
	p, err := document(p.String())
	if err != nil {
		return blob.Object{}, nil, err
	}

	obj, err := v.blobs.Stat(ctx, p)
	if err != nil {
		return blob.Object{}, nil, err
	}
	existing, err := v.lookup(ctx, p)
	if err != nil {
		return blob.Object{}, nil, err
	}
	return obj, existing, nil
}
