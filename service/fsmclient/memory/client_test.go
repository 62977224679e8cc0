package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registrykit/bridge/model/cms"
	"github.com/registrykit/bridge/service/dao"
	"github.com/registrykit/bridge/service/fsmclient"
	"github.com/registrykit/bridge/service/fsmclient/memory"
)

func TestLifecycleTransitions(t *testing.T) {
	client := memory.New()
	ctx := context.Background()

	require.NoError(t, client.Create(ctx, "S1", cms.ServiceData{Name: "svc"}))
	record, err := client.Fetch(ctx, "S1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, cms.StateDraft, record.FSM.State)
	assert.NotEmpty(t, record.LastUpdate)

	// approve is illegal from draft
	assert.ErrorIs(t, client.Approve(ctx, "S1", ""), fsmclient.ErrInvalidTransition)

	require.NoError(t, client.Submit(ctx, "S1"))
	require.NoError(t, client.Approve(ctx, "S1", "looks good"))
	record, err = client.Fetch(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, cms.StateApproved, record.FSM.State)
	assert.Equal(t, "looks good", record.FSM.Reason)
}

func TestRejectRecordsReason(t *testing.T) {
	client := memory.New()
	ctx := context.Background()
	require.NoError(t, client.Create(ctx, "S1", cms.ServiceData{Name: "svc"}))
	require.NoError(t, client.Submit(ctx, "S1"))
	require.NoError(t, client.Reject(ctx, "S1", "duplicate name"))

	record, err := client.Fetch(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, cms.StateRejected, record.FSM.State)
	assert.Equal(t, "duplicate name", record.FSM.Reason)
}

func TestCreateOverExisting(t *testing.T) {
	client := memory.New()
	ctx := context.Background()
	require.NoError(t, client.Create(ctx, "S1", cms.ServiceData{}))
	assert.ErrorIs(t, client.Create(ctx, "S1", cms.ServiceData{}), fsmclient.ErrInvalidTransition)
}

func TestTransitionOnMissingRecord(t *testing.T) {
	client := memory.New()
	assert.ErrorIs(t, client.Approve(context.Background(), "ghost", ""), dao.ErrNotFound)
}

func TestStore(t *testing.T) {
	client := memory.New()
	ctx := context.Background()
	require.NoError(t, client.Create(ctx, "S1", cms.ServiceData{Name: "a"}))
	require.NoError(t, client.Create(ctx, "S2", cms.ServiceData{Name: "b"}))

	store := client.Store()
	records, err := store.BulkFetch(ctx, []string{"S1", "ghost", "S2"})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, store.Patch(ctx, "S1", func(record *cms.LifecycleRecord) {
		record.Data.Description = "patched"
	}))
	record, err := store.Fetch(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "patched", record.Data.Description)

	assert.ErrorIs(t, store.Patch(ctx, "ghost", func(*cms.LifecycleRecord) {}), dao.ErrNotFound)
}
