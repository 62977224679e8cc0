// Package converter reacts to one changed legacy service record and
// synthesizes the CMS records needed to mirror it. A single legacy change
// can fan out to more than one CMS record: a visible service needs both an
// approved lifecycle record and a published publication record.
package converter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/registrykit/bridge/model/action"
	"github.com/registrykit/bridge/model/cms"
	"github.com/registrykit/bridge/model/legacy"
	"github.com/registrykit/bridge/service/gate"
	"github.com/registrykit/bridge/service/legacystore"
)

// OwnershipGate answers whether the owner of a service is enrolled in a
// sync direction.
type OwnershipGate interface {
	IsEnabled(ctx context.Context, direction gate.Direction, serviceID string) (bool, error)
}

// Service is the legacy→CMS converter.
type Service struct {
	store  legacystore.Service
	gate   OwnershipGate
	logger zerolog.Logger
}

// Option customizes the converter.
type Option func(*Service)

// WithLogger sets the converter logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a converter reading history through store and enrollment
// through ownershipGate.
func New(store legacystore.Service, ownershipGate OwnershipGate, options ...Option) *Service {
	ret := &Service{store: store, gate: ownershipGate, logger: zerolog.Nop()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Handle maps one legacy change to its action set. Records tagged as
// produced by a previous CMS→legacy sync, and records whose owner is not
// enrolled in the legacy→CMS direction, yield a no-op.
func (s *Service) Handle(ctx context.Context, record *legacy.ServiceRecord) (action.Set, error) {
	var out action.Set
	if record.CMSTag {
		s.logger.Debug().Str("serviceId", record.ServiceID).Msg("skipping record produced by cms sync")
		return out, nil
	}
	enabled, err := s.gate.IsEnabled(ctx, gate.DirectionLegacyToCMS, record.ServiceID)
	if err != nil {
		return out, err
	}
	if !enabled {
		return out, nil
	}
	states, err := s.targetStates(ctx, record)
	if err != nil {
		return out, err
	}
	for _, state := range states {
		out.SyncCMS = append(out.SyncCMS, synthesize(record, state))
	}
	return out, nil
}

// targetStates computes the list of CMS states the legacy record must be
// mirrored into. The list is never empty.
func (s *Service) targetStates(ctx context.Context, record *legacy.ServiceRecord) ([]cms.State, error) {
	switch {
	case record.Deleted():
		return []cms.State{cms.StateDeleted}, nil
	case record.IsVisible:
		return []cms.State{cms.StateApproved, cms.StatePublished}, nil
	}
	published, err := s.wasPublished(ctx, record)
	if err != nil {
		return nil, err
	}
	if published {
		return []cms.State{cms.StateApproved, cms.StateUnpublished}, nil
	}
	return []cms.State{cms.StateDraft}, nil
}
