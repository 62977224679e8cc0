// Package dispatcher reacts to one changed CMS lifecycle record and decides
// which follow-up actions must be emitted towards the legacy direction.
//
// Every change is historicized. Beyond that, the record's FSM state selects
// at most one forward action: submitted→review, approved→publication,
// deleted→deletion. Records whose last transition came from the legacy→CMS
// sync are historicized only, so a synced change can never bounce back to
// its source (anti-loop guard).
package dispatcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/registrykit/bridge/internal/clock"
	"github.com/registrykit/bridge/internal/idgen"
	"github.com/registrykit/bridge/model/action"
	"github.com/registrykit/bridge/model/cms"
)

// versionErrorPrefix tags a generated version placeholder for a lifecycle
// record submitted without one. Upstream should never produce such records;
// the placeholder keeps the pipeline flowing and is logged as a
// data-integrity signal worth alerting on.
const versionErrorPrefix = "ERR_"

// Config holds the dispatcher settings. It is required, never absent.
type Config struct {
	// MaxAllowedPaymentAmount is the ceiling forced onto every publication
	// request regardless of the record's own value.
	MaxAllowedPaymentAmount int64 `json:"maxAllowedPaymentAmount" yaml:"maxAllowedPaymentAmount"`
}

// Service is the CMS→legacy dispatcher. Handle is a pure total function of
// (record, config): no I/O, no failure path.
type Service struct {
	config Config
	logger zerolog.Logger
}

// Option customizes the dispatcher.
type Option func(*Service)

// WithLogger sets the dispatcher logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a dispatcher.
func New(config Config, options ...Option) *Service {
	ret := &Service{config: config, logger: zerolog.Nop()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Handle maps one lifecycle change to its action set.
func (s *Service) Handle(_ context.Context, record *cms.LifecycleRecord) (action.Set, error) {
	var out action.Set
	out.Historicization = s.historicize(record)
	if record.SyncedFromLegacy() {
		return out, nil
	}
	switch record.FSM.State {
	case cms.StateSubmitted:
		out.Review = s.requestReview(record)
	case cms.StateApproved:
		out.Publication = s.requestPublication(record)
	case cms.StateDeleted:
		out.Deletion = &action.RequestDeletion{ID: record.ID}
	}
	return out, nil
}

// historicize denormalizes the record into an audit snapshot, resolving
// last_update to "now" when the change event carries none.
func (s *Service) historicize(record *cms.LifecycleRecord) *action.RequestHistoricization {
	lastUpdate := record.LastUpdate
	if lastUpdate == "" {
		lastUpdate = clock.Now().UTC().Format(time.RFC3339)
	}
	return &action.RequestHistoricization{
		ID:         record.ID,
		Data:       record.Data,
		FSM:        record.FSM,
		Version:    record.Version,
		LastUpdate: lastUpdate,
	}
}

func (s *Service) requestReview(record *cms.LifecycleRecord) *action.RequestReview {
	version := record.Version
	if version == "" {
		version = versionErrorPrefix + idgen.New()
		s.logger.Warn().
			Str("serviceId", record.ID).
			Str("version", version).
			Msg("lifecycle record submitted without version, generated placeholder")
	}
	return &action.RequestReview{ID: record.ID, Data: record.Data, Version: version}
}

func (s *Service) requestPublication(record *cms.LifecycleRecord) *action.RequestPublication {
	data := record.Data
	data.MaxAllowedPaymentAmount = s.config.MaxAllowedPaymentAmount
	autoPublish := false
	if record.FSM.AutoPublish != nil {
		autoPublish = *record.FSM.AutoPublish
	}
	return &action.RequestPublication{ID: record.ID, Data: data, AutoPublish: autoPublish}
}
