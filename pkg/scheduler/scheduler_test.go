package scheduler

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphflow/graphflow/pkg/engine"
	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/persistence/file"
)

type fakeRunner struct {
	mu       sync.Mutex
	executed []string
}

func (f *fakeRunner) Execute(_ context.Context, workflow *models.Workflow, opts engine.Options) (*models.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.executed = append(f.executed, workflow.ID)

	return &models.Run{ID: "run", WorkflowID: workflow.ID, Trigger: opts.Trigger}, nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *fakeRunner, *file.Persistence) {
	t.Helper()

	store, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	runner := &fakeRunner{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	return New(logger, store, runner), runner, store
}

func cronWorkflow(id, schedule string, enabled bool) *models.Workflow {
	return &models.Workflow{
		ID:      id,
		Name:    id,
		Enabled: enabled,
		Nodes: []*models.Node{
			{ID: "tick", Kind: models.KindCronTrigger, Config: map[string]any{"schedule": schedule}},
		},
	}
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.NoError(t, ValidateSchedule("0 9 * * 1-5"))
	assert.Error(t, ValidateSchedule(""))
	assert.Error(t, ValidateSchedule("not a schedule"))
	assert.Error(t, ValidateSchedule("99 * * * *"))
}

func TestReload_RegistersEnabledCronTriggers(t *testing.T) {
	scheduler, _, store := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, store.WorkflowRepository().Save(ctx, cronWorkflow("wf-on", "*/5 * * * *", true)))
	require.NoError(t, store.WorkflowRepository().Save(ctx, cronWorkflow("wf-off", "*/5 * * * *", false)))
	require.NoError(t, store.WorkflowRepository().Save(ctx, cronWorkflow("wf-bad", "bogus", true)))

	require.NoError(t, scheduler.Reload(ctx))

	assert.Len(t, scheduler.entries, 1)
	assert.Contains(t, scheduler.entries, "wf-on/tick")
}

func TestReload_DropsRemovedTriggers(t *testing.T) {
	scheduler, _, store := newTestScheduler(t)
	ctx := context.Background()

	workflow := cronWorkflow("wf-edit", "*/5 * * * *", true)
	require.NoError(t, store.WorkflowRepository().Save(ctx, workflow))
	require.NoError(t, scheduler.Reload(ctx))
	require.Len(t, scheduler.entries, 1)

	workflow.Enabled = false
	require.NoError(t, store.WorkflowRepository().Save(ctx, workflow))
	require.NoError(t, scheduler.Reload(ctx))

	assert.Empty(t, scheduler.entries)
}

func TestFire_DispatchesRun(t *testing.T) {
	scheduler, runner, store := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, store.WorkflowRepository().Save(ctx, cronWorkflow("wf-fire", "*/5 * * * *", true)))

	scheduler.fire("wf-fire", "tick")

	require.Len(t, runner.executed, 1)
	assert.Equal(t, "wf-fire", runner.executed[0])
}

func TestFire_SkipsDisabledWorkflow(t *testing.T) {
	scheduler, runner, store := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, store.WorkflowRepository().Save(ctx, cronWorkflow("wf-sleep", "*/5 * * * *", false)))

	scheduler.fire("wf-sleep", "tick")
	scheduler.fire("wf-missing", "tick")

	assert.Empty(t, runner.executed)
}
