package legacy

import (
	"fmt"
	"strings"
)

// versionPadWidth is the zero-padded width of the version segment inside a
// historical lookup id. The legacy store keys every snapshot of a service as
// serviceId + zero-padded version.
const versionPadWidth = 16

// DeletedPrefix marks a logically deleted legacy service: the monolith never
// removes rows, it renames them.
const DeletedPrefix = "DELETED"

// Metadata mirrors the legacy serviceMetadata document. Field names follow
// the monolith's camelCase wire convention.
type Metadata struct {
	Scope       string `json:"scope,omitempty"`
	Category    string `json:"category,omitempty"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	PEC         string `json:"pec,omitempty"`
	SupportURL  string `json:"supportUrl,omitempty"`
	PrivacyURL  string `json:"privacyUrl,omitempty"`
	TosURL      string `json:"tosUrl,omitempty"`
	WebURL      string `json:"webUrl,omitempty"`
	AppIOS      string `json:"appIos,omitempty"`
	AppAndroid  string `json:"appAndroid,omitempty"`
	CTA         string `json:"cta,omitempty"`
	TokenName   string `json:"tokenName,omitempty"`
	Topic       string `json:"topicId,omitempty"`
	Description string `json:"description,omitempty"`
}

// ServiceRecord is one version of a legacy service. The legacy store is
// append-only: every mutation creates a new version and, for a given
// ServiceID, versions are contiguous starting at 0.
type ServiceRecord struct {
	ServiceID               string    `json:"serviceId"`
	Version                 int       `json:"version"`
	ServiceName             string    `json:"serviceName"`
	DepartmentName          string    `json:"departmentName,omitempty"`
	OrganizationName        string    `json:"organizationName"`
	OrganizationFiscalCode  string    `json:"organizationFiscalCode"`
	IsVisible               bool      `json:"isVisible"`
	CMSTag                  bool      `json:"cmsTag,omitempty"`
	ServiceMetadata         *Metadata `json:"serviceMetadata,omitempty"`
	AuthorizedCIDRs         []string  `json:"authorizedCIDRs,omitempty"`
	AuthorizedRecipients    []string  `json:"authorizedRecipients,omitempty"`
	RequireSecureChannels   bool      `json:"requireSecureChannels"`
	MaxAllowedPaymentAmount int64     `json:"maxAllowedPaymentAmount,omitempty"`
}

// HistoryID builds the historical lookup id of a given service version.
func HistoryID(serviceID string, version int) string {
	return fmt.Sprintf("%s%0*d", serviceID, versionPadWidth, version)
}

// Deleted reports whether the record represents a logically deleted service.
func (r *ServiceRecord) Deleted() bool {
	return strings.HasPrefix(r.ServiceName, DeletedPrefix)
}
