package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/registrykit/bridge/internal/clock"
	"github.com/registrykit/bridge/model/cms"
	"github.com/registrykit/bridge/service/dao"
	"github.com/registrykit/bridge/service/dao/store"
	"github.com/registrykit/bridge/service/fsmclient"
)

// Client is an in-memory FSM engine enforcing the lifecycle transition
// table: create→draft, submitted→approved, submitted→rejected.
type Client struct {
	records *store.MemoryStore[string, cms.LifecycleRecord]
}

// New creates an empty in-memory FSM client.
func New() *Client {
	return &Client{
		records: store.NewMemoryStore[string, cms.LifecycleRecord](func(r *cms.LifecycleRecord) string {
			return r.ID
		}),
	}
}

// Fetch returns the lifecycle record for id, or (nil, nil) when absent.
func (c *Client) Fetch(ctx context.Context, id string) (*cms.LifecycleRecord, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	return c.records.Load(ctx, id)
}

// Create registers a new service in the draft state. Creating over an
// existing record is rejected.
func (c *Client) Create(ctx context.Context, id string, data cms.ServiceData) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	existing, err := c.records.Load(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s already exists", fsmclient.ErrInvalidTransition, id)
	}
	return c.records.Save(ctx, &cms.LifecycleRecord{
		ID:         id,
		Data:       data,
		FSM:        cms.FSM{State: cms.StateDraft},
		LastUpdate: clock.Now().UTC().Format(time.RFC3339),
	})
}

// Submit transitions a draft record to submitted.
func (c *Client) Submit(ctx context.Context, id string) error {
	return c.transition(ctx, id, cms.StateDraft, cms.StateSubmitted, "")
}

// Approve transitions a submitted record to approved.
func (c *Client) Approve(ctx context.Context, id string, reason string) error {
	return c.transition(ctx, id, cms.StateSubmitted, cms.StateApproved, reason)
}

// Reject transitions a submitted record to rejected.
func (c *Client) Reject(ctx context.Context, id string, reason string) error {
	return c.transition(ctx, id, cms.StateSubmitted, cms.StateRejected, reason)
}

func (c *Client) transition(ctx context.Context, id string, from, to cms.State, reason string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	record, err := c.records.Load(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("fsm: %s: %w", id, dao.ErrNotFound)
	}
	if record.FSM.State != from {
		return fmt.Errorf("%w: %s is %s, expected %s", fsmclient.ErrInvalidTransition, id, record.FSM.State, from)
	}
	updated := *record
	updated.FSM.State = to
	updated.FSM.Reason = reason
	updated.FSM.LastTransition = fmt.Sprintf("%s to %s", from, to)
	updated.LastUpdate = clock.Now().UTC().Format(time.RFC3339)
	return c.records.Save(ctx, &updated)
}

// Store exposes the engine's persistence surface.
func (c *Client) Store() fsmclient.Store {
	return &engineStore{records: c.records}
}

type engineStore struct {
	records *store.MemoryStore[string, cms.LifecycleRecord]
}

func (s *engineStore) Fetch(ctx context.Context, id string) (*cms.LifecycleRecord, error) {
	return s.records.Load(ctx, id)
}

func (s *engineStore) BulkFetch(ctx context.Context, ids []string) ([]*cms.LifecycleRecord, error) {
	out := make([]*cms.LifecycleRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.records.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if record != nil {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *engineStore) Patch(ctx context.Context, id string, apply func(*cms.LifecycleRecord)) error {
	record, err := s.records.Load(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("fsm store: %s: %w", id, dao.ErrNotFound)
	}
	updated := *record
	apply(&updated)
	return s.records.Save(ctx, &updated)
}
