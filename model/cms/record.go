package cms

// State enumerates the positions a service can occupy in either CMS
// container. Lifecycle records move through draft/submitted/approved/
// rejected/deleted; publication records are either published or unpublished.
type State string

const (
	StateDraft     State = "draft"
	StateSubmitted State = "submitted"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
	StateDeleted   State = "deleted"

	StatePublished   State = "published"
	StateUnpublished State = "unpublished"
)

// TransitionFromLegacy marks a record whose last change was produced by the
// legacy→CMS sync direction. A record carrying this marker must never be
// bounced back towards the legacy store (anti-loop guard).
const TransitionFromLegacy = "from Legacy"

// Organization identifies the institution owning a service.
type Organization struct {
	Name       string `json:"name" yaml:"name"`
	FiscalCode string `json:"fiscal_code" yaml:"fiscal_code"`
}

// Metadata carries the optional descriptive and contact fields of a service.
type Metadata struct {
	Scope      string `json:"scope,omitempty" yaml:"scope,omitempty"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
	Address    string `json:"address,omitempty" yaml:"address,omitempty"`
	Email      string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone      string `json:"phone,omitempty" yaml:"phone,omitempty"`
	PEC        string `json:"pec,omitempty" yaml:"pec,omitempty"`
	SupportURL string `json:"support_url,omitempty" yaml:"support_url,omitempty"`
	PrivacyURL string `json:"privacy_url,omitempty" yaml:"privacy_url,omitempty"`
	TosURL     string `json:"tos_url,omitempty" yaml:"tos_url,omitempty"`
	WebURL     string `json:"web_url,omitempty" yaml:"web_url,omitempty"`
	AppIOS     string `json:"app_ios,omitempty" yaml:"app_ios,omitempty"`
	AppAndroid string `json:"app_android,omitempty" yaml:"app_android,omitempty"`
	CTA        string `json:"cta,omitempty" yaml:"cta,omitempty"`
	TokenName  string `json:"token_name,omitempty" yaml:"token_name,omitempty"`
	Topic      string `json:"topic,omitempty" yaml:"topic,omitempty"`
}

// ServiceData is the CMS-side representation of a service payload. Field
// names follow the CMS snake_case wire convention.
type ServiceData struct {
	Name                    string       `json:"name" yaml:"name"`
	Description             string       `json:"description" yaml:"description"`
	Organization            Organization `json:"organization" yaml:"organization"`
	Metadata                Metadata     `json:"metadata" yaml:"metadata"`
	AuthorizedRecipients    []string     `json:"authorized_recipients,omitempty" yaml:"authorized_recipients,omitempty"`
	AuthorizedCIDRs         []string     `json:"authorized_cidrs,omitempty" yaml:"authorized_cidrs,omitempty"`
	RequireSecureChannel    bool         `json:"require_secure_channel" yaml:"require_secure_channel"`
	MaxAllowedPaymentAmount int64        `json:"max_allowed_payment_amount,omitempty" yaml:"max_allowed_payment_amount,omitempty"`
}

// FSM is the state-machine envelope attached to a lifecycle record.
type FSM struct {
	State          State  `json:"state"`
	LastTransition string `json:"lastTransition,omitempty"`
	AutoPublish    *bool  `json:"autoPublish,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// LifecycleRecord lives in the CMS lifecycle container. It is created on
// service creation, mutated on every allowed transition and never
// hard-deleted: deletion is the terminal "deleted" state.
type LifecycleRecord struct {
	ID         string      `json:"id"`
	Data       ServiceData `json:"data"`
	FSM        FSM         `json:"fsm"`
	Version    string      `json:"version,omitempty"`
	LastUpdate string      `json:"last_update,omitempty"`
}

// SyncedFromLegacy reports whether the record's last change originated from
// the legacy→CMS direction.
func (r *LifecycleRecord) SyncedFromLegacy() bool {
	return r.FSM.LastTransition == TransitionFromLegacy
}

// PublicationFSM is the two-state envelope of a publication record.
type PublicationFSM struct {
	State State `json:"state"`
}

// PublicationRecord lives in the CMS publication container and is derived
// from an approved LifecycleRecord.
type PublicationRecord struct {
	ID   string         `json:"id"`
	Data ServiceData    `json:"data"`
	FSM  PublicationFSM `json:"fsm"`
}
