package memory

import (
	"context"

	"github.com/registrykit/bridge/model/legacy"
	"github.com/registrykit/bridge/service/dao"
	"github.com/registrykit/bridge/service/dao/store"
)

// Service is an in-memory legacy store keeping every service version under
// its historical lookup id.
type Service struct {
	*store.MemoryStore[string, legacy.ServiceRecord]
}

// New creates an empty in-memory legacy store.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, legacy.ServiceRecord](func(r *legacy.ServiceRecord) string {
			return legacy.HistoryID(r.ServiceID, r.Version)
		}),
	}
}

// Fetch returns the record stored under historyID, or (nil, nil) when that
// version was never written.
func (s *Service) Fetch(ctx context.Context, historyID string) (*legacy.ServiceRecord, error) {
	if historyID == "" {
		return nil, dao.ErrInvalidID
	}
	return s.Load(ctx, historyID)
}

// Save appends one service version. Overwriting an existing version is
// allowed and replaces it, matching last-write-wins semantics on the
// append-only stream.
func (s *Service) Save(ctx context.Context, record *legacy.ServiceRecord) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	if record.ServiceID == "" {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, record)
}
