// Package fsmclient defines the contract of the external finite-state
// machine engine owning lifecycle transitions and their persistence. The
// bridge only consumes it: transition legality and storage belong to the
// engine.
package fsmclient

import (
	"context"
	"errors"

	"github.com/registrykit/bridge/model/cms"
)

// ErrInvalidTransition is returned when a requested transition is not legal
// from the record's current state.
var ErrInvalidTransition = errors.New("fsm: invalid transition")

// Client drives lifecycle transitions. All failures are infrastructure
// errors from the caller's point of view and must propagate unchanged.
type Client interface {
	// Fetch returns the lifecycle record for id, or (nil, nil) when absent.
	Fetch(ctx context.Context, id string) (*cms.LifecycleRecord, error)

	// Create registers a new service in the draft state.
	Create(ctx context.Context, id string, data cms.ServiceData) error

	// Approve transitions a submitted record to approved.
	Approve(ctx context.Context, id string, reason string) error

	// Reject transitions a submitted record to rejected, recording the
	// policy reason.
	Reject(ctx context.Context, id string, reason string) error

	// Store exposes the engine's persistent store for bulk and partial
	// operations outside the transition path.
	Store() Store
}

// Store is the FSM engine's persistence surface.
type Store interface {
	Fetch(ctx context.Context, id string) (*cms.LifecycleRecord, error)
	BulkFetch(ctx context.Context, ids []string) ([]*cms.LifecycleRecord, error)

	// Patch applies an in-place mutation to the stored record. The apply
	// callback sees the current value and may modify it; absence of the
	// record is an error.
	Patch(ctx context.Context, id string, apply func(*cms.LifecycleRecord)) error
}
