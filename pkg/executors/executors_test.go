package executors

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/graphflow/graphflow/pkg/expression"
	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTools fakes every collaborator and records whether any real
// call happened. Used to prove dry-run performs no side effect.
type recordingTools struct {
	calls int
}

func (r *recordingTools) Run(_ context.Context, _, _ string) (string, error) {
	r.calls++

	return "command output", nil
}

func (r *recordingTools) Complete(_ context.Context, _, _ string) (string, error) {
	r.calls++

	return "llm output", nil
}

func (r *recordingTools) Create(_ context.Context, _, _, _, _ string, _ []string) (string, error) {
	r.calls++

	return "TASK-42", nil
}

func (r *recordingTools) Send(_ context.Context, _, _, _ string) (string, error) {
	r.calls++

	return "sent", nil
}

func (r *recordingTools) Spawn(_ context.Context, _ tools.SpawnRequest) error {
	r.calls++

	return nil
}

func (r *recordingTools) Do(_ context.Context, _ string, _ map[string]string) (string, error) {
	r.calls++

	return "browser output", nil
}

func testSet(rec *recordingTools) *Set {
	return NewSet(&tools.Toolset{
		Shell:     rec,
		LLM:       rec,
		Tasks:     rec,
		Messenger: rec,
		Spawner:   rec,
		Browser:   rec,
	}, expression.New())
}

func testRunContext(dryRun bool) *RunContext {
	return &RunContext{
		WorkflowID: "wf-1",
		RunID:      "run-1",
		Trigger:    models.TriggerManual,
		DryRun:     dryRun,
		Outputs:    map[string]any{},
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

func TestSet_CoversAllKinds(t *testing.T) {
	set := testSet(&recordingTools{})

	for _, kind := range models.AllNodeKinds {
		exec, err := set.For(kind)
		require.NoError(t, err, string(kind))
		assert.NotNil(t, exec, string(kind))
	}

	_, err := set.For(models.NodeKind("bogus"))
	require.Error(t, err)
}

func TestTriggerExecutor_PassesThroughEventData(t *testing.T) {
	rc := testRunContext(false)
	rc.Trigger = models.TriggerEvent
	rc.EventData = map[string]any{"path": "main.go"}

	node := &models.Node{ID: "t1", Kind: models.KindEventTrigger}

	out, err := (&TriggerExecutor{}).Execute(context.Background(), node, nil, rc)
	require.NoError(t, err)
	assert.Equal(t, rc.EventData, out)
}

func TestTriggerExecutor_FiredMarkerWithoutEvent(t *testing.T) {
	rc := testRunContext(false)

	node := &models.Node{ID: "t1", Kind: models.KindManualTrigger}

	out, err := (&TriggerExecutor{}).Execute(context.Background(), node, nil, rc)
	require.NoError(t, err)

	marker, ok := out.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, marker["fired_at"])
	assert.Equal(t, "manual", marker["trigger"])
}

func TestConditionExecutor_BranchRouting(t *testing.T) {
	exec := &ConditionExecutor{Evaluator: expression.New()}
	node := &models.Node{
		ID:     "cond",
		Kind:   models.KindCondition,
		Config: map[string]any{"expression": "input.flag == true"},
	}

	out, err := exec.Execute(context.Background(), node, map[string]any{"flag": true}, testRunContext(false))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"branch": "true"}, out)

	out, err = exec.Execute(context.Background(), node, map[string]any{"flag": false}, testRunContext(false))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"branch": "false"}, out)
}

func TestConditionExecutor_EvaluationFailureIsFalse(t *testing.T) {
	exec := &ConditionExecutor{Evaluator: expression.New()}
	node := &models.Node{
		ID:     "cond",
		Kind:   models.KindCondition,
		Config: map[string]any{"expression": "input ==  "},
	}

	out, err := exec.Execute(context.Background(), node, map[string]any{}, testRunContext(false))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"branch": "false"}, out)
}

func TestTransformExecutor_Expr(t *testing.T) {
	exec := &TransformExecutor{Evaluator: expression.New()}
	node := &models.Node{
		ID:     "tx",
		Kind:   models.KindTransform,
		Config: map[string]any{"expression": `{"name": input.user, "n": input.count * 2}`},
	}

	out, err := exec.Execute(context.Background(), node, map[string]any{"user": "ada", "count": 3}, testRunContext(false))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "ada", "n": 6}, out)
}

func TestTransformExecutor_JQ(t *testing.T) {
	exec := &TransformExecutor{Evaluator: expression.New()}
	node := &models.Node{
		ID:   "tx",
		Kind: models.KindTransform,
		Config: map[string]any{
			"language":   "jq",
			"expression": `.items | length`,
		},
	}

	out, err := exec.Execute(context.Background(), node, map[string]any{"items": []any{1, 2, 3}}, testRunContext(false))
	require.NoError(t, err)
	assert.Equal(t, 3, out)
}

func TestBrowserExecutor_RequiredFields(t *testing.T) {
	rec := &recordingTools{}
	exec := &BrowserExecutor{Browser: rec}

	tests := []struct {
		name   string
		config map[string]any
		ok     bool
	}{
		{"navigate with url", map[string]any{"action": "navigate", "url": "https://example.com"}, true},
		{"navigate without url", map[string]any{"action": "navigate"}, false},
		{"screenshot", map[string]any{"action": "screenshot"}, true},
		{"eval without code", map[string]any{"action": "eval"}, false},
		{"click without selector", map[string]any{"action": "click"}, false},
		{"wait with timeout", map[string]any{"action": "wait", "timeout_ms": 500}, true},
		{"wait without selector or timeout", map[string]any{"action": "wait"}, false},
		{"unknown action", map[string]any{"action": "teleport"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &models.Node{ID: "b", Kind: models.KindBrowser, Config: tt.config}

			_, err := exec.Execute(context.Background(), node, nil, testRunContext(false))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDryRun_NoSideEffects(t *testing.T) {
	rec := &recordingTools{}
	set := testSet(rec)
	rc := testRunContext(true)

	nodes := []*models.Node{
		{ID: "start", Kind: models.KindManualTrigger},
		{ID: "llm", Kind: models.KindLLM, Config: map[string]any{"prompt": "summarize {{input}}"}},
		{ID: "task", Kind: models.KindCreateTask, Config: map[string]any{"title": "t"}},
		{ID: "msg", Kind: models.KindSendMessage, Config: map[string]any{"recipient": "ops", "body": "hi"}},
		{ID: "cmd", Kind: models.KindRunCommand, Config: map[string]any{"command": "ls"}},
		{ID: "spawn", Kind: models.KindSpawnAgent, Config: map[string]any{"title": "investigate"}},
		{ID: "browser", Kind: models.KindBrowser, Config: map[string]any{"action": "screenshot"}},
		{ID: "check", Kind: models.KindCondition, Config: map[string]any{"expression": "input != nil"}},
		{ID: "shape", Kind: models.KindTransform, Config: map[string]any{"expression": `{"echo": input}`}},
	}

	for _, node := range nodes {
		exec, err := set.For(node.Kind)
		require.NoError(t, err)

		out, err := exec.Execute(context.Background(), node, "payload", rc)
		require.NoError(t, err, node.ID)

		marker, ok := out.(map[string]any)
		require.True(t, ok, node.ID)
		assert.Equal(t, true, marker["dry_run"], node.ID)
		assert.NotEmpty(t, marker["description"], node.ID)
	}

	assert.Zero(t, rec.calls, "dry run must not touch any collaborator")
}

func TestDryRun_ConditionKeepsBranch(t *testing.T) {
	exec := &ConditionExecutor{Evaluator: expression.New()}
	node := &models.Node{
		ID:     "cond",
		Kind:   models.KindCondition,
		Config: map[string]any{"expression": "input.flag == true"},
	}

	out, err := exec.Execute(context.Background(), node, map[string]any{"flag": true}, testRunContext(true))
	require.NoError(t, err)

	marker, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "true", marker["branch"], "routing must survive dry run")
	assert.Equal(t, true, marker["dry_run"])
}

func TestDryRun_TransformKeepsResult(t *testing.T) {
	exec := &TransformExecutor{Evaluator: expression.New()}

	mapped := &models.Node{
		ID:     "tx",
		Kind:   models.KindTransform,
		Config: map[string]any{"expression": `{"name": input.user}`},
	}

	out, err := exec.Execute(context.Background(), mapped, map[string]any{"user": "ada"}, testRunContext(true))
	require.NoError(t, err)

	marker, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada", marker["name"])
	assert.Equal(t, true, marker["dry_run"])

	scalar := &models.Node{
		ID:     "tx",
		Kind:   models.KindTransform,
		Config: map[string]any{"language": "jq", "expression": `.items | length`},
	}

	out, err = exec.Execute(context.Background(), scalar, map[string]any{"items": []any{1, 2}}, testRunContext(true))
	require.NoError(t, err)

	marker, ok = out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, marker["result"], "scalar results are wrapped, not dropped")
	assert.Equal(t, true, marker["dry_run"])
}

func TestDryRun_TriggerDoesNotMutateEventData(t *testing.T) {
	rc := testRunContext(true)
	rc.Trigger = models.TriggerEvent
	rc.EventData = map[string]any{"path": "main.go"}

	node := &models.Node{ID: "t1", Kind: models.KindEventTrigger}

	out, err := (&TriggerExecutor{}).Execute(context.Background(), node, nil, rc)
	require.NoError(t, err)

	marker, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "main.go", marker["path"])
	assert.Equal(t, true, marker["dry_run"])
	assert.Equal(t, map[string]any{"path": "main.go"}, rc.EventData)
}

func TestCreateTaskExecutor_EmptyTitle(t *testing.T) {
	exec := &CreateTaskExecutor{Tasks: &recordingTools{}}
	node := &models.Node{ID: "task", Kind: models.KindCreateTask, Config: map[string]any{"title": "{{input.missing}}"}}

	_, err := exec.Execute(context.Background(), node, map[string]any{}, testRunContext(false))
	require.Error(t, err)
}

func TestRunCommandExecutor_RealCall(t *testing.T) {
	rec := &recordingTools{}
	exec := &RunCommandExecutor{Shell: rec}
	node := &models.Node{ID: "cmd", Kind: models.KindRunCommand, Config: map[string]any{"command": "echo {{input.name}}"}}

	out, err := exec.Execute(context.Background(), node, map[string]any{"name": "world"}, testRunContext(false))
	require.NoError(t, err)
	assert.Equal(t, "command output", out)
	assert.Equal(t, 1, rec.calls)
}

func TestSpawnAgentExecutor_NeedsTaskOrTitle(t *testing.T) {
	exec := &SpawnAgentExecutor{Spawner: &recordingTools{}}
	node := &models.Node{ID: "spawn", Kind: models.KindSpawnAgent, Config: map[string]any{}}

	_, err := exec.Execute(context.Background(), node, nil, testRunContext(false))
	require.Error(t, err)
}

func TestSpawnAgentExecutor_SpawnerError(t *testing.T) {
	exec := &SpawnAgentExecutor{Spawner: failingSpawner{}}
	node := &models.Node{ID: "spawn", Kind: models.KindSpawnAgent, Config: map[string]any{"title": "x"}}

	_, err := exec.Execute(context.Background(), node, nil, testRunContext(false))
	require.Error(t, err)
}

type failingSpawner struct{}

func (failingSpawner) Spawn(_ context.Context, _ tools.SpawnRequest) error {
	return errors.New("orchestrator returned 503")
}
