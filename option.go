package bridge

import (
	"github.com/rs/zerolog"

	"github.com/registrykit/bridge/model/action"
	"github.com/registrykit/bridge/service/fsmclient"
	"github.com/registrykit/bridge/service/gate"
	"github.com/registrykit/bridge/service/legacystore"
	"github.com/registrykit/bridge/service/messaging"
	"github.com/registrykit/bridge/service/pubstore"
	"github.com/registrykit/bridge/service/telemetry"
	"github.com/registrykit/bridge/service/ticketing"
)

// Option customizes the bridge Service.
type Option func(s *Service)

// WithLogger sets the service logger, propagated to every handler.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithSubscriptionRegistry sets the ownership registry backing the gate.
func WithSubscriptionRegistry(registry gate.SubscriptionRegistry) Option {
	return func(s *Service) { s.registry = registry }
}

// WithLegacyStore sets the legacy store.
func WithLegacyStore(store legacystore.Service) Option {
	return func(s *Service) { s.legacyStore = store }
}

// WithPublicationStore sets the publication store.
func WithPublicationStore(store pubstore.Service) Option {
	return func(s *Service) { s.publications = store }
}

// WithFSMClient sets the lifecycle FSM client.
func WithFSMClient(client fsmclient.Client) Option {
	return func(s *Service) { s.fsm = client }
}

// WithActionQueue sets the queue carrying emitted actions.
func WithActionQueue(queue messaging.Queue[action.Envelope]) Option {
	return func(s *Service) { s.actions = queue }
}

// WithTelemetrySink sets the review-outcome sink.
func WithTelemetrySink(sink telemetry.Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithTicketingClient sets the ticketing client used for manual-review
// bookkeeping.
func WithTicketingClient(client *ticketing.Client) Option {
	return func(s *Service) { s.tickets = client }
}
