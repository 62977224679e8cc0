// Package pubstore exposes the CMS publication container: the currently
// published (or unpublished) snapshot of each service, plus the duplicate
// lookup used by the review engine.
package pubstore

import (
	"context"

	"github.com/registrykit/bridge/model/cms"
)

// Service is the publication store contract. Fetch returns (nil, nil) when
// no snapshot exists for the id.
type Service interface {
	Fetch(ctx context.Context, id string) (*cms.PublicationRecord, error)

	// FindDuplicate returns the id of another service carrying the same name
	// and organization fiscal code, or "" when none exists. excludeID is the
	// candidate's own id and never reported as a collision.
	FindDuplicate(ctx context.Context, name, fiscalCode, excludeID string) (string, error)

	Save(ctx context.Context, record *cms.PublicationRecord) error
}
