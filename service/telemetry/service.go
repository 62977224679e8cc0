// Package telemetry records review outcomes. Outcomes are legitimate
// business results, not errors: they are published on a queue for
// downstream analytics, logged, and traced — never surfaced as invocation
// failures.
package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/registrykit/bridge/internal/clock"
	"github.com/registrykit/bridge/service/messaging"
)

// Outcome classifies how a review request was resolved.
type Outcome string

const (
	OutcomeManual      Outcome = "manual"
	OutcomeAutoApprove Outcome = "auto-approve"
	OutcomeAutoReject  Outcome = "auto-reject"
)

// ReviewOutcome is one recorded review decision.
type ReviewOutcome struct {
	ServiceID string    `json:"serviceId"`
	Outcome   Outcome   `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	Diff      string    `json:"diff,omitempty"`
	At        time.Time `json:"at"`
}

// Sink receives review outcomes. Implementations must never fail the
// calling invocation.
type Sink interface {
	TrackReviewOutcome(ctx context.Context, outcome *ReviewOutcome)
}

// Service is the default Sink: it stamps, traces, logs and publishes each
// outcome.
type Service struct {
	queue  messaging.Queue[ReviewOutcome]
	logger zerolog.Logger
}

// Option customizes the telemetry service.
type Option func(*Service)

// WithLogger sets the telemetry logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a telemetry service publishing on queue.
func New(queue messaging.Queue[ReviewOutcome], options ...Option) *Service {
	ret := &Service{queue: queue, logger: zerolog.Nop()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// TrackReviewOutcome records one outcome. Publication failures are logged
// and swallowed: losing a telemetry sample must not fail the review
// invocation.
func (s *Service) TrackReviewOutcome(ctx context.Context, outcome *ReviewOutcome) {
	if outcome.At.IsZero() {
		outcome.At = clock.Now().UTC()
	}
	ctx, span := startSpan(ctx, "review.outcome", map[string]string{
		"service.id":     outcome.ServiceID,
		"review.outcome": string(outcome.Outcome),
	})
	err := s.queue.Publish(ctx, outcome)
	endSpan(span, err)
	event := s.logger.Info()
	if err != nil {
		event = s.logger.Error().Err(err)
	}
	event.
		Str("serviceId", outcome.ServiceID).
		Str("outcome", string(outcome.Outcome)).
		Str("reason", outcome.Reason).
		Msg("review outcome")
}
