package converter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registrykit/bridge/model/cms"
	"github.com/registrykit/bridge/model/legacy"
	"github.com/registrykit/bridge/service/converter"
	"github.com/registrykit/bridge/service/gate"
	legacymemory "github.com/registrykit/bridge/service/legacystore/memory"
)

func newConverter(t *testing.T, store *legacymemory.Service, lists gate.Lists, owners map[string]string) *converter.Service {
	t.Helper()
	if store == nil {
		store = legacymemory.New()
	}
	return converter.New(store, gate.New(lists, gate.NewStaticRegistry(owners)))
}

func wildcardLists() gate.Lists {
	return gate.Lists{LegacyToCMS: []string{gate.Wildcard}}
}

func TestHandleCMSTagNoOp(t *testing.T) {
	svc := newConverter(t, nil, wildcardLists(), nil)
	record := &legacy.ServiceRecord{ServiceID: "S1", ServiceName: "svc", CMSTag: true, IsVisible: true}
	set, err := svc.Handle(context.Background(), record)
	assert.NoError(t, err)
	assert.True(t, set.Empty())
}

func TestHandleOwnerNotEnrolled(t *testing.T) {
	lists := gate.Lists{LegacyToCMS: []string{"other-user"}}
	owners := map[string]string{"S1": "/users/someone-else"}
	svc := newConverter(t, nil, lists, owners)
	record := &legacy.ServiceRecord{ServiceID: "S1", ServiceName: "svc", IsVisible: true}
	set, err := svc.Handle(context.Background(), record)
	assert.NoError(t, err)
	assert.True(t, set.Empty())
}

func TestHandleRegistryErrorPropagates(t *testing.T) {
	lists := gate.Lists{LegacyToCMS: []string{"user-1"}}
	svc := newConverter(t, nil, lists, map[string]string{}) // unknown service → registry error
	record := &legacy.ServiceRecord{ServiceID: "S1", ServiceName: "svc"}
	_, err := svc.Handle(context.Background(), record)
	assert.Error(t, err)
}

func TestHandleDeletedService(t *testing.T) {
	svc := newConverter(t, nil, wildcardLists(), nil)
	record := &legacy.ServiceRecord{ServiceID: "S2", ServiceName: "DELETED foo", Version: 3, IsVisible: false}
	set, err := svc.Handle(context.Background(), record)
	assert.NoError(t, err)
	require.Len(t, set.SyncCMS, 1)
	entry := set.SyncCMS[0]
	require.NotNil(t, entry.Lifecycle)
	assert.Equal(t, cms.StateDeleted, entry.Lifecycle.FSM.State)
	assert.Equal(t, cms.TransitionFromLegacy, entry.Lifecycle.FSM.LastTransition)
	assert.Equal(t, "S2", entry.Lifecycle.ID)
}

func TestHandleVisibleService(t *testing.T) {
	svc := newConverter(t, nil, wildcardLists(), nil)
	record := &legacy.ServiceRecord{ServiceID: "S1", ServiceName: "svc", IsVisible: true}
	set, err := svc.Handle(context.Background(), record)
	assert.NoError(t, err)
	require.Len(t, set.SyncCMS, 2)

	require.NotNil(t, set.SyncCMS[0].Lifecycle)
	assert.Equal(t, cms.StateApproved, set.SyncCMS[0].Lifecycle.FSM.State)
	assert.Equal(t, cms.TransitionFromLegacy, set.SyncCMS[0].Lifecycle.FSM.LastTransition)

	require.NotNil(t, set.SyncCMS[1].Publication)
	assert.Equal(t, cms.StatePublished, set.SyncCMS[1].Publication.FSM.State)
}

func TestHandleInvisiblePreviouslyPublished(t *testing.T) {
	store := legacymemory.New()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &legacy.ServiceRecord{ServiceID: "S1", Version: 0, ServiceName: "svc", IsVisible: true}))

	svc := newConverter(t, store, wildcardLists(), nil)
	record := &legacy.ServiceRecord{ServiceID: "S1", Version: 1, ServiceName: "svc", IsVisible: false}
	set, err := svc.Handle(ctx, record)
	assert.NoError(t, err)
	require.Len(t, set.SyncCMS, 2)
	assert.Equal(t, cms.StateApproved, set.SyncCMS[0].Lifecycle.FSM.State)
	assert.Equal(t, cms.StateUnpublished, set.SyncCMS[1].Publication.FSM.State)
}

func TestHandleInvisibleNeverPublished(t *testing.T) {
	svc := newConverter(t, nil, wildcardLists(), nil)
	record := &legacy.ServiceRecord{ServiceID: "S1", Version: 0, ServiceName: "svc", IsVisible: false}
	set, err := svc.Handle(context.Background(), record)
	assert.NoError(t, err)
	require.Len(t, set.SyncCMS, 1)
	require.NotNil(t, set.SyncCMS[0].Lifecycle)
	assert.Equal(t, cms.StateDraft, set.SyncCMS[0].Lifecycle.FSM.State)
}

func TestFieldMapping(t *testing.T) {
	svc := newConverter(t, nil, wildcardLists(), nil)
	record := &legacy.ServiceRecord{
		ServiceID:              "S1",
		ServiceName:            "My Service",
		OrganizationName:       "Org",
		OrganizationFiscalCode: "12345678901",
		IsVisible:              false,
		AuthorizedCIDRs:        []string{"10.0.0.0/8"},
		AuthorizedRecipients:   []string{"FISCAL1"},
		RequireSecureChannels:  true,
		ServiceMetadata: &legacy.Metadata{
			Scope:      "LOCAL",
			TosURL:     "https://example.com/tos",
			PrivacyURL: "https://example.com/privacy",
		},
	}
	set, err := svc.Handle(context.Background(), record)
	assert.NoError(t, err)
	require.Len(t, set.SyncCMS, 1)
	data := set.SyncCMS[0].Lifecycle.Data
	assert.Equal(t, "My Service", data.Name)
	assert.Equal(t, "Org", data.Organization.Name)
	assert.Equal(t, "12345678901", data.Organization.FiscalCode)
	assert.Equal(t, "LOCAL", data.Metadata.Scope)
	assert.Equal(t, "https://example.com/tos", data.Metadata.TosURL)
	assert.Equal(t, []string{"10.0.0.0/8"}, data.AuthorizedCIDRs)
	assert.Equal(t, []string{"FISCAL1"}, data.AuthorizedRecipients)
	assert.True(t, data.RequireSecureChannel)
	// Missing description defaults to the documented placeholder.
	assert.Equal(t, "-", data.Description)
}
