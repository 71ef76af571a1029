package vault

import (
	"context"
	"fmt"

	"github.com/mwantia/docsync/pkg/access"
	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/search"
)

// Search scans the metadata index regardless of folder hierarchy. Records
// the caller may not see are dropped before matching, and at most
// SearchCap matches are returned. An empty query returns nothing.
func (v *Vault) Search(ctx context.Context, vis access.Context, query string, order search.Order) ([]Entry, error) {
	terms := search.Terms(query)
	if len(terms) == 0 {
		return []Entry{}, nil
	}
	v.metrics.RecordSearch("global")

	records, err := v.meta.Query(ctx, func(r *models.Record) bool {
		if !access.CanSeeObject(vis, paths.Path(r.Path), r.UploadedBy) {
			return false
		}
		return search.MatchesTerms(v.entry(*r).document(), terms)
	}, v.opts.SearchCap)
	if err != nil {
		return nil, fmt.Errorf("failed to search metadata: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, v.entry(record))
	}

	search.Sort(entries, order, Entry.keys)
	return entries, nil
}
