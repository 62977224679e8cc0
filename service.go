package bridge

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/viant/afs"

	"github.com/registrykit/bridge/model/action"
	"github.com/registrykit/bridge/model/cms"
	"github.com/registrykit/bridge/model/legacy"
	"github.com/registrykit/bridge/service/converter"
	"github.com/registrykit/bridge/service/dispatcher"
	"github.com/registrykit/bridge/service/fsmclient"
	fsmmemory "github.com/registrykit/bridge/service/fsmclient/memory"
	"github.com/registrykit/bridge/service/gate"
	"github.com/registrykit/bridge/service/legacystore"
	legacymemory "github.com/registrykit/bridge/service/legacystore/memory"
	"github.com/registrykit/bridge/service/messaging"
	queuefs "github.com/registrykit/bridge/service/messaging/fs"
	queuememory "github.com/registrykit/bridge/service/messaging/memory"
	"github.com/registrykit/bridge/service/pubstore"
	pubmemory "github.com/registrykit/bridge/service/pubstore/memory"
	"github.com/registrykit/bridge/service/review"
	"github.com/registrykit/bridge/service/telemetry"
	"github.com/registrykit/bridge/service/ticketing"
)

// Service wires the sync handlers, the ownership gate and the stores into
// one façade. Each On* entry point runs the matching handler and publishes
// the resulting actions on the action queue; the caller still receives the
// full action set so trigger infrastructure can report it.
type Service struct {
	config *Config
	logger zerolog.Logger

	registry     gate.SubscriptionRegistry
	legacyStore  legacystore.Service
	publications pubstore.Service
	fsm          fsmclient.Client
	actions      messaging.Queue[action.Envelope]
	sink         telemetry.Sink
	tickets      *ticketing.Client

	ownershipGate *gate.Gate
	dispatcher    *dispatcher.Service
	converter     *converter.Service
	review        *review.Service
}

// New creates a Service from config. Collaborators not supplied through
// options default to the in-memory implementations.
func New(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: config, logger: zerolog.Nop()}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init() error {
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}
	s.ownershipGate = gate.New(s.config.Lists, s.registry, gate.WithLogger(s.logger))
	s.dispatcher = dispatcher.New(s.config.Dispatcher, dispatcher.WithLogger(s.logger))
	s.converter = converter.New(s.legacyStore, s.ownershipGate, converter.WithLogger(s.logger))
	reviewService, err := review.New(s.config.Review, s.fsm, s.publications, s.ownershipGate, s.sink,
		review.WithLogger(s.logger))
	if err != nil {
		return err
	}
	s.review = reviewService
	if s.tickets == nil && s.config.Ticketing.BaseURL != "" {
		s.tickets = ticketing.New(s.config.Ticketing.Config, ticketing.WithLogger(s.logger))
	}
	return nil
}

func (s *Service) ensureBaseSetup() error {
	if s.registry == nil {
		s.registry = gate.NewStaticRegistry(nil)
	}
	if s.legacyStore == nil {
		s.legacyStore = legacymemory.New()
	}
	if s.publications == nil {
		s.publications = pubmemory.New()
	}
	if s.fsm == nil {
		s.fsm = fsmmemory.New()
	}
	if s.actions == nil {
		queue, err := newQueue[action.Envelope](s.config.Queue, "actions")
		if err != nil {
			return err
		}
		s.actions = queue
	}
	if s.sink == nil {
		queue, err := newQueue[telemetry.ReviewOutcome](s.config.Queue, "review-outcomes")
		if err != nil {
			return err
		}
		s.sink = telemetry.New(queue, telemetry.WithLogger(s.logger))
	}
	return nil
}

func newQueue[T any](config QueueConfig, name string) (messaging.Queue[T], error) {
	switch config.Vendor {
	case messaging.VendorFS:
		fsConfig := queuefs.DefaultConfig()
		fsConfig.BasePath = config.BasePath + "/" + name
		return queuefs.NewQueue[T](afs.New(), fsConfig)
	case messaging.VendorMemory:
		return queuememory.NewQueue[T](queuememory.DefaultConfig()), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", config.Vendor)
}

// OnLifecycleChange handles one CMS lifecycle change event.
func (s *Service) OnLifecycleChange(ctx context.Context, record *cms.LifecycleRecord) (action.Set, error) {
	set, err := s.dispatcher.Handle(ctx, record)
	if err != nil {
		return set, err
	}
	return set, s.emit(ctx, set)
}

// OnLegacyChange handles one legacy registry change event.
func (s *Service) OnLegacyChange(ctx context.Context, record *legacy.ServiceRecord) (action.Set, error) {
	set, err := s.converter.Handle(ctx, record)
	if err != nil {
		return set, err
	}
	return set, s.emit(ctx, set)
}

// OnReviewRequest handles one raw review request payload.
func (s *Service) OnReviewRequest(ctx context.Context, payload []byte) (action.Set, error) {
	set, err := s.review.Handle(ctx, payload)
	if err != nil {
		return set, err
	}
	return set, s.emit(ctx, set)
}

// emit publishes every action in the set. A failure mid-way fails the
// invocation; already-published envelopes will be re-emitted on the retry,
// which the queue consumer must treat idempotently.
func (s *Service) emit(ctx context.Context, set action.Set) error {
	for _, envelope := range set.Envelopes() {
		envelope := envelope
		if err := s.actions.Publish(ctx, &envelope); err != nil {
			return fmt.Errorf("emitting %s: %w", envelope.Kind, err)
		}
	}
	return nil
}

// FindReviewTicket locates the open review ticket of a service on the
// configured board, or nil when none exists.
func (s *Service) FindReviewTicket(ctx context.Context, serviceID string) (*ticketing.Issue, error) {
	if s.tickets == nil {
		return nil, fmt.Errorf("ticketing client not configured")
	}
	jql := fmt.Sprintf("project = %q AND summary ~ %q", s.config.Ticketing.Project, serviceID)
	response, err := s.tickets.Search(ctx, &ticketing.SearchRequest{
		Fields:     []string{"summary", "status", "updated", "created"},
		JQL:        jql,
		StartAt:    0,
		MaxResults: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(response.Issues) == 0 {
		return nil, nil
	}
	return &response.Issues[0], nil
}

// MoveTicketToReview advances a ticket into the in-review column.
func (s *Service) MoveTicketToReview(ctx context.Context, ticketKey string) error {
	if s.tickets == nil {
		return fmt.Errorf("ticketing client not configured")
	}
	return s.tickets.Transition(ctx, ticketKey, s.config.Ticketing.TransitionID)
}

// Gate exposes the ownership gate for collaborators that need the
// registry-free predicates.
func (s *Service) Gate() *gate.Gate {
	return s.ownershipGate
}

// Actions exposes the action queue, letting the embedding application drain
// what the handlers emitted.
func (s *Service) Actions() messaging.Queue[action.Envelope] {
	return s.actions
}
