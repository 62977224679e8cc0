package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/registrykit/bridge/model/action"
	"github.com/registrykit/bridge/model/cms"
)

func TestSetEmpty(t *testing.T) {
	assert.True(t, action.Set{}.Empty())
	assert.False(t, action.Set{Deletion: &action.RequestDeletion{ID: "S1"}}.Empty())
	assert.False(t, action.Set{SyncCMS: []action.SyncRecord{{}}}.Empty())
}

func TestSetKinds(t *testing.T) {
	set := action.Set{
		Review:          &action.RequestReview{ID: "S1"},
		Historicization: &action.RequestHistoricization{ID: "S1"},
	}
	assert.Equal(t, []action.Kind{action.KindRequestReview, action.KindRequestHistoricization}, set.Kinds())
	assert.Nil(t, action.Set{}.Kinds())
}

func TestSetEnvelopes(t *testing.T) {
	set := action.Set{
		Historicization: &action.RequestHistoricization{ID: "S1"},
		Publication:     &action.RequestPublication{ID: "S1"},
		SyncCMS: []action.SyncRecord{
			{Container: action.ContainerLifecycle, Lifecycle: &cms.LifecycleRecord{ID: "S2"}},
			{Container: action.ContainerPublication, Publication: &cms.PublicationRecord{ID: "S2"}},
		},
	}
	envelopes := set.Envelopes()
	assert.Len(t, envelopes, 4)
	assert.Equal(t, action.KindRequestHistoricization, envelopes[0].Kind)
	assert.Equal(t, action.KindRequestPublication, envelopes[1].Kind)
	assert.Equal(t, action.KindRequestSyncCMS, envelopes[2].Kind)
	assert.Equal(t, action.ContainerLifecycle, envelopes[2].SyncRecord.Container)
	assert.Equal(t, action.ContainerPublication, envelopes[3].SyncRecord.Container)

	assert.Empty(t, action.Set{}.Envelopes())
}
