// Package legacystore exposes read/write access to the append-only legacy
// registry. Records are addressed by their historical lookup id
// (serviceId + zero-padded version); the store never mutates an existing
// version.
package legacystore

import (
	"context"

	"github.com/registrykit/bridge/model/legacy"
)

// Service is the legacy store contract used by the sync handlers. Fetch
// returns (nil, nil) when the requested version does not exist — absent
// intermediate versions are an expected condition for the historical walk.
type Service interface {
	Fetch(ctx context.Context, historyID string) (*legacy.ServiceRecord, error)
	Save(ctx context.Context, record *legacy.ServiceRecord) error
}
