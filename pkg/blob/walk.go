package blob

import (
	"context"

	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/vaulterr"
)

// Walk collects every object beneath prefix, sentinels included, by
// descending through sub-prefixes. A failure to list the top level is
// returned as an error; failures further down are reported per sub-prefix
// so the caller can still process everything else.
func Walk(ctx context.Context, s Store, prefix paths.Path) ([]Object, []vaulterr.Failure, error) {
	listing, err := s.List(ctx, prefix)
	if err != nil {
		return nil, nil, err
	}

	objects := listing.Items
	var failures []vaulterr.Failure
	for _, sub := range listing.SubPrefixes {
		nested, nestedFailures, err := Walk(ctx, s, sub)
		if err != nil {
			failures = append(failures, vaulterr.Failure{Path: sub.String(), Err: err})
			continue
		}
		objects = append(objects, nested...)
		failures = append(failures, nestedFailures...)
	}
	return objects, failures, nil
}
