// Package action defines the closed set of follow-up actions a sync decision
// can produce. A handler invocation returns a Set holding at most one action
// of each kind; the empty Set is a legitimate no-op outcome. Actions are
// plain records: encoding and queue publication belong to the emitter layer.
package action

import "github.com/registrykit/bridge/model/cms"

// Kind identifies one action shape.
type Kind string

const (
	KindRequestReview          Kind = "requestReview"
	KindRequestPublication     Kind = "requestPublication"
	KindRequestHistoricization Kind = "requestHistoricization"
	KindRequestDeletion        Kind = "requestDeletion"
	KindRequestSyncCMS         Kind = "requestSyncCms"
)

// RequestReview asks the review workflow to evaluate a submitted service.
type RequestReview struct {
	ID      string          `json:"id"`
	Data    cms.ServiceData `json:"data"`
	Version string          `json:"version"`
}

// RequestPublication asks the publication workflow to make an approved
// service public.
type RequestPublication struct {
	ID          string          `json:"id"`
	Data        cms.ServiceData `json:"data"`
	AutoPublish bool            `json:"autoPublish"`
}

// RequestHistoricization records a denormalized snapshot of a lifecycle
// record at the moment of change, for audit purposes.
type RequestHistoricization struct {
	ID         string          `json:"id"`
	Data       cms.ServiceData `json:"data"`
	FSM        cms.FSM         `json:"fsm"`
	Version    string          `json:"version,omitempty"`
	LastUpdate string          `json:"last_update"`
}

// RequestDeletion asks downstream stores to retire a service.
type RequestDeletion struct {
	ID string `json:"id"`
}

// Container identifies which CMS container a synthesized record targets.
type Container string

const (
	ContainerLifecycle   Container = "lifecycle"
	ContainerPublication Container = "publication"
)

// SyncRecord is one CMS record synthesized from a legacy change. Exactly one
// of Lifecycle/Publication is set, matching Container.
type SyncRecord struct {
	Container   Container              `json:"container"`
	Lifecycle   *cms.LifecycleRecord   `json:"lifecycle,omitempty"`
	Publication *cms.PublicationRecord `json:"publication,omitempty"`
}

// Set is the union of actions produced by one handler invocation.
type Set struct {
	Review          *RequestReview          `json:"requestReview,omitempty"`
	Publication     *RequestPublication     `json:"requestPublication,omitempty"`
	Historicization *RequestHistoricization `json:"requestHistoricization,omitempty"`
	Deletion        *RequestDeletion        `json:"requestDeletion,omitempty"`
	SyncCMS         []SyncRecord            `json:"requestSyncCms,omitempty"`
}

// Empty reports whether the invocation produced no follow-up action.
func (s Set) Empty() bool {
	return s.Review == nil && s.Publication == nil && s.Historicization == nil &&
		s.Deletion == nil && len(s.SyncCMS) == 0
}

// Kinds lists the action kinds present in the set, in declaration order.
func (s Set) Kinds() []Kind {
	var kinds []Kind
	if s.Review != nil {
		kinds = append(kinds, KindRequestReview)
	}
	if s.Publication != nil {
		kinds = append(kinds, KindRequestPublication)
	}
	if s.Historicization != nil {
		kinds = append(kinds, KindRequestHistoricization)
	}
	if s.Deletion != nil {
		kinds = append(kinds, KindRequestDeletion)
	}
	if len(s.SyncCMS) > 0 {
		kinds = append(kinds, KindRequestSyncCMS)
	}
	return kinds
}

// Envelope wraps a single action for queue publication. Exactly one payload
// field is set, matching Kind. SyncCMS entries are enveloped individually so
// re-emission after a partial failure stays idempotent at the queue layer.
type Envelope struct {
	Kind            Kind                    `json:"kind"`
	Review          *RequestReview          `json:"requestReview,omitempty"`
	Publication     *RequestPublication     `json:"requestPublication,omitempty"`
	Historicization *RequestHistoricization `json:"requestHistoricization,omitempty"`
	Deletion        *RequestDeletion        `json:"requestDeletion,omitempty"`
	SyncRecord      *SyncRecord             `json:"syncRecord,omitempty"`
}

// Envelopes splits the set into one envelope per action, SyncCMS fan-out
// included.
func (s Set) Envelopes() []Envelope {
	var out []Envelope
	if s.Historicization != nil {
		out = append(out, Envelope{Kind: KindRequestHistoricization, Historicization: s.Historicization})
	}
	if s.Review != nil {
		out = append(out, Envelope{Kind: KindRequestReview, Review: s.Review})
	}
	if s.Publication != nil {
		out = append(out, Envelope{Kind: KindRequestPublication, Publication: s.Publication})
	}
	if s.Deletion != nil {
		out = append(out, Envelope{Kind: KindRequestDeletion, Deletion: s.Deletion})
	}
	for i := range s.SyncCMS {
		rec := s.SyncCMS[i]
		out = append(out, Envelope{Kind: KindRequestSyncCMS, SyncRecord: &rec})
	}
	return out
}
