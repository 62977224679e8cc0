package bridge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registrykit/bridge"
	"github.com/registrykit/bridge/model/action"
	"github.com/registrykit/bridge/model/cms"
	"github.com/registrykit/bridge/model/legacy"
	fsmmemory "github.com/registrykit/bridge/service/fsmclient/memory"
	"github.com/registrykit/bridge/service/gate"
	pubmemory "github.com/registrykit/bridge/service/pubstore/memory"
)

func wildcardConfig() *bridge.Config {
	config := bridge.DefaultConfig()
	config.Lists = gate.Lists{
		LegacyToCMS: []string{gate.Wildcard},
		CMSToLegacy: []string{gate.Wildcard},
		AutoApprove: []string{gate.Wildcard},
	}
	return config
}

func drainActions(t *testing.T, service *bridge.Service) []action.Kind {
	t.Helper()
	var kinds []action.Kind
	for {
		message, err := service.Actions().Consume(context.Background())
		require.NoError(t, err)
		if message == nil {
			return kinds
		}
		kinds = append(kinds, message.T().Kind)
		require.NoError(t, message.Ack())
	}
}

func TestOnLifecycleChangeEmitsActions(t *testing.T) {
	service, err := bridge.New(wildcardConfig())
	require.NoError(t, err)

	set, err := service.OnLifecycleChange(context.Background(), &cms.LifecycleRecord{
		ID:         "S1",
		Data:       cms.ServiceData{Name: "svc"},
		FSM:        cms.FSM{State: cms.StateSubmitted},
		Version:    "3",
		LastUpdate: "2024-05-01T10:30:00Z",
	})
	require.NoError(t, err)
	require.NotNil(t, set.Historicization)
	require.NotNil(t, set.Review)

	kinds := drainActions(t, service)
	assert.Equal(t, []action.Kind{action.KindRequestHistoricization, action.KindRequestReview}, kinds)
}

func TestOnLegacyChangeEmitsSyncRecords(t *testing.T) {
	service, err := bridge.New(wildcardConfig())
	require.NoError(t, err)

	set, err := service.OnLegacyChange(context.Background(), &legacy.ServiceRecord{
		ServiceID:              "S1",
		Version:                0,
		ServiceName:            "svc",
		OrganizationName:       "Org",
		OrganizationFiscalCode: "111",
		IsVisible:              true,
	})
	require.NoError(t, err)
	require.Len(t, set.SyncCMS, 2)

	kinds := drainActions(t, service)
	assert.Equal(t, []action.Kind{action.KindRequestSyncCMS, action.KindRequestSyncCMS}, kinds)
}

func TestOnLegacyChangeHonoursAntiLoopGuard(t *testing.T) {
	service, err := bridge.New(wildcardConfig())
	require.NoError(t, err)

	set, err := service.OnLegacyChange(context.Background(), &legacy.ServiceRecord{
		ServiceID:   "S1",
		ServiceName: "svc",
		CMSTag:      true,
		IsVisible:   true,
	})
	require.NoError(t, err)
	assert.True(t, set.Empty())
	assert.Empty(t, drainActions(t, service))
}

func TestOnReviewRequestAutoApproves(t *testing.T) {
	data := cms.ServiceData{
		Name:         "svc",
		Description:  "a service",
		Organization: cms.Organization{Name: "Org", FiscalCode: "111"},
	}

	fsm := fsmmemory.New()
	ctx := context.Background()
	require.NoError(t, fsm.Create(ctx, "S1", data))
	require.NoError(t, fsm.Submit(ctx, "S1"))

	publications := pubmemory.New()
	require.NoError(t, publications.Save(ctx, &cms.PublicationRecord{
		ID:   "S1",
		Data: data,
		FSM:  cms.PublicationFSM{State: cms.StatePublished},
	}))

	service, err := bridge.New(wildcardConfig(),
		bridge.WithFSMClient(fsm),
		bridge.WithPublicationStore(publications))
	require.NoError(t, err)

	payload := []byte(`{
		"id": "S1",
		"data": {
			"name": "svc",
			"description": "a service",
			"organization": {"name": "Org", "fiscal_code": "111"},
			"metadata": {},
			"require_secure_channel": false
		},
		"version": "3"
	}`)
	set, err := service.OnReviewRequest(ctx, payload)
	require.NoError(t, err)
	assert.True(t, set.Empty())
	assert.Empty(t, drainActions(t, service))

	record, err := fsm.Fetch(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, cms.StateApproved, record.FSM.State)
}

func TestOnReviewRequestRoutesToManualReview(t *testing.T) {
	config := wildcardConfig()
	config.Lists.AutoApprove = nil
	service, err := bridge.New(config)
	require.NoError(t, err)

	payload := []byte(`{
		"id": "S1",
		"data": {
			"name": "svc",
			"organization": {"name": "Org", "fiscal_code": "111"},
			"require_secure_channel": false
		},
		"version": "3"
	}`)
	set, err := service.OnReviewRequest(context.Background(), payload)
	require.NoError(t, err)
	require.NotNil(t, set.Review)
	assert.Equal(t, "S1", set.Review.ID)

	kinds := drainActions(t, service)
	assert.Equal(t, []action.Kind{action.KindRequestReview}, kinds)
}

func TestTicketingNotConfigured(t *testing.T) {
	service, err := bridge.New(wildcardConfig())
	require.NoError(t, err)

	_, err = service.FindReviewTicket(context.Background(), "S1")
	assert.Error(t, err)
	assert.Error(t, service.MoveTicketToReview(context.Background(), "T-1"))
}
