package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/persistence"
)

func newStore(t *testing.T) *Persistence {
	t.Helper()

	store, err := NewPersistence("file://" + t.TempDir())
	require.NoError(t, err)

	return store
}

func TestWorkflowRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	workflow := &models.Workflow{
		ID:      "wf-1",
		Name:    "round trip",
		Enabled: true,
		Nodes: []*models.Node{
			{ID: "start", Kind: models.KindManualTrigger},
		},
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, store.WorkflowRepository().Save(ctx, workflow))

	loaded, err := store.WorkflowRepository().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "round trip", loaded.Name)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, models.KindManualTrigger, loaded.Nodes[0].Kind)
}

func TestGetByID_NotFound(t *testing.T) {
	store := newStore(t)

	_, err := store.WorkflowRepository().GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestList_OrderedByCreation(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	base := time.Now().UTC()

	for i, id := range []string{"wf-b", "wf-a", "wf-c"} {
		workflow := &models.Workflow{
			ID:        id,
			Name:      id,
			Enabled:   id != "wf-a",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.WorkflowRepository().Save(ctx, workflow))
	}

	all, err := store.WorkflowRepository().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "wf-b", all[0].ID)
	assert.Equal(t, "wf-c", all[2].ID)

	enabled, err := store.WorkflowRepository().ListEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 2)

	for _, workflow := range enabled {
		assert.True(t, workflow.Enabled)
	}
}

func TestDelete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.WorkflowRepository().Save(ctx, &models.Workflow{ID: "wf-del", Name: "victim"}))
	require.NoError(t, store.WorkflowRepository().Delete(ctx, "wf-del"))

	assert.ErrorIs(t, store.WorkflowRepository().Delete(ctx, "wf-del"), persistence.ErrWorkflowNotFound)
}

func TestRunRoundTripAndListing(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		run := &models.Run{
			ID:         store.NewRunID(),
			WorkflowID: "wf-1",
			Trigger:    models.TriggerManual,
			Status:     models.RunStatusSuccess,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			NodeResults: map[string]*models.NodeExecutionResult{
				"start": {Status: models.NodeStatusSuccess},
			},
		}
		require.NoError(t, store.RunRepository().SaveRun(ctx, run))
	}

	other := &models.Run{ID: store.NewRunID(), WorkflowID: "wf-2", StartedAt: base}
	require.NoError(t, store.RunRepository().SaveRun(ctx, other))

	runs, err := store.RunRepository().ListByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Most recent first.
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
	assert.True(t, runs[1].StartedAt.After(runs[2].StartedAt))

	loaded, err := store.RunRepository().GetRun(ctx, runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSuccess, loaded.Status)
	require.Contains(t, loaded.NodeResults, "start")

	_, err = store.RunRepository().GetRun(ctx, "missing")
	assert.ErrorIs(t, err, persistence.ErrRunNotFound)
}

func TestNewRunID_Unique(t *testing.T) {
	store := newStore(t)

	assert.NotEqual(t, store.NewRunID(), store.NewRunID())
}
