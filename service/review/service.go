// Package review implements the automatic review engine: it validates an
// incoming review request, checks for duplicates, and decides between
// automatic approval, automatic rejection and manual review by diffing the
// previously published snapshot against the candidate on the configured
// sensitive paths.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/registrykit/bridge/model/action"
	"github.com/registrykit/bridge/service/fsmclient"
	"github.com/registrykit/bridge/service/gate"
	"github.com/registrykit/bridge/service/pubstore"
	"github.com/registrykit/bridge/service/telemetry"
)

// Config holds the review engine settings.
type Config struct {
	// SensitivePaths lists the dotted property paths whose change always
	// forces manual review, e.g. "data.name" or
	// "data.organization.fiscal_code".
	SensitivePaths []string `json:"sensitivePaths" yaml:"sensitivePaths"`
}

// OwnershipGate answers whether a service owner is enrolled in the
// automatic-approval direction.
type OwnershipGate interface {
	IsEnabled(ctx context.Context, direction gate.Direction, serviceID string) (bool, error)
}

// Service is the auto-review engine.
type Service struct {
	config       Config
	fsm          fsmclient.Client
	publications pubstore.Service
	gate         OwnershipGate
	telemetry    telemetry.Sink
	schema       *jsonschema.Schema
	logger       zerolog.Logger
}

// Option customizes the review engine.
type Option func(*Service)

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a review engine. The strict payload schema is compiled once
// here; a compile failure is a configuration error.
func New(config Config, fsm fsmclient.Client, publications pubstore.Service, ownershipGate OwnershipGate, sink telemetry.Sink, options ...Option) (*Service, error) {
	schema, err := compileRequestSchema()
	if err != nil {
		return nil, err
	}
	ret := &Service{
		config:       config,
		fsm:          fsm,
		publications: publications,
		gate:         ownershipGate,
		telemetry:    sink,
		schema:       schema,
		logger:       zerolog.Nop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// Handle evaluates one raw review request.
//
// A malformed payload fails the invocation. Policy violations (secure
// channel rules, duplicates) route through the automatic-reject path and
// yield a no-op. An intact candidate either matches its published snapshot
// on every sensitive path and is approved automatically, or goes to manual
// review. Infrastructure errors always propagate.
func (s *Service) Handle(ctx context.Context, payload []byte) (action.Set, error) {
	var out action.Set
	request, err := s.decodeRequest(payload)
	if err != nil {
		return out, err
	}
	if verr := validateRequest(request); verr != nil {
		return s.reject(ctx, request, verr)
	}
	collidingID, err := s.publications.FindDuplicate(ctx, request.Data.Name, request.Data.Organization.FiscalCode, request.ID)
	if err != nil {
		return out, fmt.Errorf("review: duplicate lookup for %s: %w", request.ID, err)
	}
	if collidingID != "" {
		return s.reject(ctx, request, &ValidationError{
			ServiceID: request.ID,
			Reason:    fmt.Sprintf("duplicate of service %s: same name and organization fiscal code", collidingID),
		})
	}
	enrolled, err := s.gate.IsEnabled(ctx, gate.DirectionAutoApprove, request.ID)
	if err != nil {
		return out, err
	}
	if !enrolled {
		return s.manual(ctx, request, "owner not enrolled in automatic approval", ""), nil
	}
	snapshot, err := s.publications.Fetch(ctx, request.ID)
	if err != nil {
		return out, fmt.Errorf("review: fetching published snapshot of %s: %w", request.ID, err)
	}
	if snapshot == nil {
		return s.manual(ctx, request, "no published snapshot", ""), nil
	}
	published := &comparison{ID: snapshot.ID, Data: snapshot.Data}
	candidate := &comparison{ID: request.ID, Data: request.Data}
	changed, err := changedPaths(s.config.SensitivePaths, published, candidate)
	if err != nil {
		return out, err
	}
	if len(changed) > 0 {
		reason := fmt.Sprintf("sensitive fields changed: %v", changed)
		return s.manual(ctx, request, reason, renderDiff(published, candidate)), nil
	}
	if err := s.fsm.Approve(ctx, request.ID, "identical to published snapshot on all sensitive fields"); err != nil {
		return out, fmt.Errorf("review: approving %s: %w", request.ID, err)
	}
	s.telemetry.TrackReviewOutcome(ctx, &telemetry.ReviewOutcome{
		ServiceID: request.ID,
		Outcome:   telemetry.OutcomeAutoApprove,
	})
	return out, nil
}

// validateRequest enforces the secure-channel rule: a service requiring a
// secure channel must declare a terms-of-service URL, one that does not
// must not.
func validateRequest(request *Request) *ValidationError {
	tos := request.Data.Metadata.TosURL
	switch {
	case request.Data.RequireSecureChannel && tos == "":
		return &ValidationError{ServiceID: request.ID, Reason: "require_secure_channel is set but no terms-of-service URL is declared"}
	case !request.Data.RequireSecureChannel && tos != "":
		return &ValidationError{ServiceID: request.ID, Reason: "terms-of-service URL declared without require_secure_channel"}
	}
	return nil
}

// manual routes the request to a human reviewer.
func (s *Service) manual(ctx context.Context, request *Request, reason, diff string) action.Set {
	s.telemetry.TrackReviewOutcome(ctx, &telemetry.ReviewOutcome{
		ServiceID: request.ID,
		Outcome:   telemetry.OutcomeManual,
		Reason:    reason,
		Diff:      diff,
	})
	return action.Set{
		Review: &action.RequestReview{ID: request.ID, Data: request.Data, Version: request.Version},
	}
}

// reject applies the automatic rejection for a policy violation. Only a
// failure of the reject call itself propagates.
func (s *Service) reject(ctx context.Context, request *Request, verr *ValidationError) (action.Set, error) {
	if err := s.fsm.Reject(ctx, request.ID, verr.Reason); err != nil {
		return action.Set{}, fmt.Errorf("review: rejecting %s: %w", request.ID, err)
	}
	s.telemetry.TrackReviewOutcome(ctx, &telemetry.ReviewOutcome{
		ServiceID: request.ID,
		Outcome:   telemetry.OutcomeAutoReject,
		Reason:    verr.Reason,
	})
	s.logger.Info().Str("serviceId", request.ID).Str("reason", verr.Reason).Msg("review request auto-rejected")
	return action.Set{}, nil
}

// IsValidationError reports whether err is (or wraps) a policy violation.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
