package memory

import (
	"context"
	"strings"

	"github.com/registrykit/bridge/model/cms"
	"github.com/registrykit/bridge/service/dao"
	"github.com/registrykit/bridge/service/dao/store"
)

// Service is an in-memory publication store.
type Service struct {
	*store.MemoryStore[string, cms.PublicationRecord]
}

// New creates an empty in-memory publication store.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, cms.PublicationRecord](func(r *cms.PublicationRecord) string {
			return r.ID
		}),
	}
}

// Fetch returns the snapshot for id, or (nil, nil) when none exists.
func (s *Service) Fetch(ctx context.Context, id string) (*cms.PublicationRecord, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	return s.Load(ctx, id)
}

// FindDuplicate scans for another service with the same name and
// organization fiscal code. Name comparison is case-insensitive and ignores
// surrounding whitespace, matching how the registry deduplicates display
// names.
func (s *Service) FindDuplicate(ctx context.Context, name, fiscalCode, excludeID string) (string, error) {
	records, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	for _, record := range records {
		if record.ID == excludeID {
			continue
		}
		if record.Data.Organization.FiscalCode != fiscalCode {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(record.Data.Name), name) {
			return record.ID, nil
		}
	}
	return "", nil
}

// Save stores or replaces a snapshot.
func (s *Service) Save(ctx context.Context, record *cms.PublicationRecord) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	if record.ID == "" {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, record)
}
