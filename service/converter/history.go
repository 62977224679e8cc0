package converter

import (
	"context"

	"github.com/registrykit/bridge/model/legacy"
)

// wasPublished recovers the last known visibility of a service before its
// current version, used to tell an unpublished-but-once-public service from
// one that was never public.
//
// The walk is an explicit loop bounded by the current version number:
// versions are contiguous from 0 by invariant, but intermediate snapshots
// may be missing, in which case the walk keeps stepping down. A record at
// version 0 has no history and answers false.
func (s *Service) wasPublished(ctx context.Context, record *legacy.ServiceRecord) (bool, error) {
	for version := record.Version - 1; version >= 0; version-- {
		previous, err := s.store.Fetch(ctx, legacy.HistoryID(record.ServiceID, version))
		if err != nil {
			return false, err
		}
		if previous != nil {
			return previous.IsVisible, nil
		}
	}
	return false, nil
}
