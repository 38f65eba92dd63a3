// Package executors binds node kinds to their execution behavior.
//
// The kind set is closed (models.NodeKind), so selection is a switch rather
// than a runtime registry: adding a kind without an executor is a compile
// error here, not a dispatch miss in production.
package executors

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/graphflow/graphflow/pkg/expression"
	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/tools"
)

// RunContext is the per-run state an executor may read. It is a narrow view
// of the engine's execution context: accumulated outputs for templating,
// the dry-run flag, and the event payload that started the run.
type RunContext struct {
	WorkflowID string
	RunID      string
	Trigger    models.TriggerKind
	DryRun     bool
	EventData  map[string]any
	Outputs    map[string]any // successful node outputs, by node id
	Logger     *slog.Logger
}

// Executor runs one node kind. Implementations must perform no external
// side effect when rc.DryRun is set: side-effecting kinds return a
// descriptive placeholder, pure kinds fold the marker into their real
// output so branch routing and templating keep working downstream.
type Executor interface {
	Execute(ctx context.Context, node *models.Node, input any, rc *RunContext) (any, error)
}

// Set holds one executor per node kind, sharing a toolset and evaluator.
type Set struct {
	toolset   *tools.Toolset
	evaluator *expression.Evaluator
}

func NewSet(toolset *tools.Toolset, evaluator *expression.Evaluator) *Set {
	return &Set{toolset: toolset, evaluator: evaluator}
}

// For returns the executor for the given kind. The switch is exhaustive
// over models.AllNodeKinds.
func (s *Set) For(kind models.NodeKind) (Executor, error) {
	switch kind {
	case models.KindManualTrigger, models.KindCronTrigger, models.KindEventTrigger:
		return &TriggerExecutor{}, nil
	case models.KindLLM:
		return &LLMExecutor{LLM: s.toolset.LLM}, nil
	case models.KindCreateTask:
		return &CreateTaskExecutor{Tasks: s.toolset.Tasks}, nil
	case models.KindSendMessage:
		return &SendMessageExecutor{Messenger: s.toolset.Messenger}, nil
	case models.KindRunCommand:
		return &RunCommandExecutor{Shell: s.toolset.Shell}, nil
	case models.KindSpawnAgent:
		return &SpawnAgentExecutor{Spawner: s.toolset.Spawner}, nil
	case models.KindBrowser:
		return &BrowserExecutor{Browser: s.toolset.Browser}, nil
	case models.KindCondition:
		return &ConditionExecutor{Evaluator: s.evaluator}, nil
	case models.KindTransform:
		return &TransformExecutor{Evaluator: s.evaluator}, nil
	default:
		return nil, fmt.Errorf("no executor for node kind %q", kind)
	}
}

// dryRunResult is the placeholder a side-effecting executor returns in
// dry-run mode.
func dryRunResult(description string) map[string]any {
	return map[string]any{
		"dry_run":     true,
		"description": description,
	}
}

// markDryRun copies a pure node's real output and folds the dry-run marker
// into the copy. The original map is never mutated; event payloads are
// shared with the caller.
func markDryRun(out map[string]any, description string) map[string]any {
	marked := make(map[string]any, len(out)+2)
	for k, v := range out {
		marked[k] = v
	}

	marked["dry_run"] = true
	marked["description"] = description

	return marked
}
