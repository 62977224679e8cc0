// Package gate implements the per-owner feature gate controlling which sync
// direction a service participates in. Each direction is driven by an
// inclusion list that may name explicit logical user ids or the wildcard;
// resolving a service to its owner goes through an external subscription
// registry. A nil-lookup variant of the same primitive backs the
// service-id-keyed quality-check exclusion and the reviewer-identity test.
package gate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Wildcard enrols every owner when present in an inclusion list.
const Wildcard = "*"

// Direction names one gated sync direction.
type Direction string

const (
	// DirectionLegacyToCMS gates the legacy→CMS converter.
	DirectionLegacyToCMS Direction = "legacy-to-cms"
	// DirectionCMSToLegacy gates the CMS→legacy dispatcher follow-ups.
	DirectionCMSToLegacy Direction = "cms-to-legacy"
	// DirectionAutoApprove gates the automatic-approval path of the review
	// engine.
	DirectionAutoApprove Direction = "auto-approve"
)

// Lists holds the configured inclusion lists. Every list is
// wildcard-capable.
type Lists struct {
	LegacyToCMS           []string `json:"legacyToCms" yaml:"legacyToCms"`
	CMSToLegacy           []string `json:"cmsToLegacy" yaml:"cmsToLegacy"`
	AutoApprove           []string `json:"autoApprove" yaml:"autoApprove"`
	QualityCheckExclusion []string `json:"qualityCheckExclusion" yaml:"qualityCheckExclusion"`
	TicketLegacyReview    []string `json:"ticketLegacyReview" yaml:"ticketLegacyReview"`
}

// Subscription is the registry's view of a service subscription.
type Subscription struct {
	OwnerID string
	ETag    string
}

// SubscriptionRegistry resolves a service to its owning subscription.
// Implementations must surface transport errors unchanged.
type SubscriptionRegistry interface {
	GetSubscription(ctx context.Context, serviceID string) (*Subscription, error)
}

// Gate answers enrollment questions for the three sync directions plus the
// two registry-free predicates.
type Gate struct {
	lists    Lists
	registry SubscriptionRegistry
	logger   zerolog.Logger
}

// Option customizes a Gate.
type Option func(*Gate)

// WithLogger sets the gate logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

// New creates a Gate. registry may be nil only when every configured list
// is either empty or wildcard-only; any lookup through a nil registry fails.
func New(lists Lists, registry SubscriptionRegistry, options ...Option) *Gate {
	ret := &Gate{lists: lists, registry: registry, logger: zerolog.Nop()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// isElementAllowedOnList is the single membership primitive every gate
// predicate is built from.
func isElementAllowedOnList(list []string, element string) bool {
	for _, item := range list {
		if item == Wildcard || item == element {
			return true
		}
	}
	return false
}

func (g *Gate) listFor(direction Direction) ([]string, error) {
	switch direction {
	case DirectionLegacyToCMS:
		return g.lists.LegacyToCMS, nil
	case DirectionCMSToLegacy:
		return g.lists.CMSToLegacy, nil
	case DirectionAutoApprove:
		return g.lists.AutoApprove, nil
	}
	return nil, fmt.Errorf("gate: unknown direction %q", direction)
}

// IsEnabled reports whether the owner of serviceID is enrolled in the given
// direction. A wildcard list answers true and an empty list answers false,
// both without touching the registry; otherwise the owner is resolved and
// its trailing path segment tested for membership. Registry errors are
// surfaced, never swallowed.
func (g *Gate) IsEnabled(ctx context.Context, direction Direction, serviceID string) (bool, error) {
	list, err := g.listFor(direction)
	if err != nil {
		return false, err
	}
	if isElementAllowedOnList(list, Wildcard) {
		return true, nil
	}
	if len(list) == 0 {
		return false, nil
	}
	if g.registry == nil {
		return false, fmt.Errorf("gate: no subscription registry configured for direction %q", direction)
	}
	subscription, err := g.registry.GetSubscription(ctx, serviceID)
	if err != nil {
		return false, fmt.Errorf("gate: resolving owner of %s: %w", serviceID, err)
	}
	userID := OwnerUserID(subscription.OwnerID)
	enabled := isElementAllowedOnList(list, userID)
	g.logger.Debug().
		Str("serviceId", serviceID).
		Str("direction", string(direction)).
		Str("userId", userID).
		Bool("enabled", enabled).
		Msg("ownership gate resolved")
	return enabled, nil
}

// IsQualityCheckExcluded reports whether serviceID is excluded from quality
// checks. The exclusion list is service-id keyed, so no registry call is
// needed.
func (g *Gate) IsQualityCheckExcluded(serviceID string) bool {
	return isElementAllowedOnList(g.lists.QualityCheckExclusion, serviceID)
}

// IsTicketLegacyReviewer reports whether a raw reviewer identity is enrolled
// in the ticket-driven legacy review direction.
func (g *Gate) IsTicketLegacyReviewer(identity string) bool {
	return isElementAllowedOnList(g.lists.TicketLegacyReview, identity)
}

// OwnerUserID extracts the logical user id from a registry owner
// identifier, which arrives as a resource path whose trailing segment is
// the id.
func OwnerUserID(ownerID string) string {
	if idx := strings.LastIndex(ownerID, "/"); idx >= 0 {
		return ownerID[idx+1:]
	}
	return ownerID
}
