package converter

import (
	"github.com/registrykit/bridge/model/action"
	"github.com/registrykit/bridge/model/cms"
	"github.com/registrykit/bridge/model/legacy"
)

// defaultDescription fills the mandatory CMS description when the legacy
// record carries none.
const defaultDescription = "-"

// synthesize builds one CMS record mirroring the legacy record in the given
// state. Publication states target the publication container; everything
// else becomes a lifecycle record stamped with the from-Legacy marker so the
// dispatcher will not bounce it back.
func synthesize(record *legacy.ServiceRecord, state cms.State) action.SyncRecord {
	data := mapServiceData(record)
	switch state {
	case cms.StatePublished, cms.StateUnpublished:
		return action.SyncRecord{
			Container: action.ContainerPublication,
			Publication: &cms.PublicationRecord{
				ID:   record.ServiceID,
				Data: data,
				FSM:  cms.PublicationFSM{State: state},
			},
		}
	}
	return action.SyncRecord{
		Container: action.ContainerLifecycle,
		Lifecycle: &cms.LifecycleRecord{
			ID:   record.ServiceID,
			Data: data,
			FSM:  cms.FSM{State: state, LastTransition: cms.TransitionFromLegacy},
		},
	}
}

// mapServiceData converts the legacy camelCase shape into the CMS
// snake_case shape field by field. Missing optional legacy fields default to
// documented placeholders: description becomes "-".
func mapServiceData(record *legacy.ServiceRecord) cms.ServiceData {
	data := cms.ServiceData{
		Name: record.ServiceName,
		Organization: cms.Organization{
			Name:       record.OrganizationName,
			FiscalCode: record.OrganizationFiscalCode,
		},
		AuthorizedRecipients:    append([]string(nil), record.AuthorizedRecipients...),
		AuthorizedCIDRs:         append([]string(nil), record.AuthorizedCIDRs...),
		RequireSecureChannel:    record.RequireSecureChannels,
		MaxAllowedPaymentAmount: record.MaxAllowedPaymentAmount,
	}
	if meta := record.ServiceMetadata; meta != nil {
		data.Description = meta.Description
		data.Metadata = cms.Metadata{
			Scope:      meta.Scope,
			Category:   meta.Category,
			Address:    meta.Address,
			Email:      meta.Email,
			Phone:      meta.Phone,
			PEC:        meta.PEC,
			SupportURL: meta.SupportURL,
			PrivacyURL: meta.PrivacyURL,
			TosURL:     meta.TosURL,
			WebURL:     meta.WebURL,
			AppIOS:     meta.AppIOS,
			AppAndroid: meta.AppAndroid,
			CTA:        meta.CTA,
			TokenName:  meta.TokenName,
			Topic:      meta.Topic,
		}
	}
	if data.Description == "" {
		data.Description = defaultDescription
	}
	return data
}
