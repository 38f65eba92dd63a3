package executors

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/template"
	"github.com/graphflow/graphflow/pkg/tools"
)

// SpawnAgentExecutor posts a spawn request to the orchestration endpoint.
// A task id takes precedence over a title; at least one is required.
type SpawnAgentExecutor struct {
	Spawner tools.AgentSpawner
}

func (e *SpawnAgentExecutor) Execute(ctx context.Context, node *models.Node, input any, rc *RunContext) (any, error) {
	cfg, err := node.SpawnAgentConfig()
	if err != nil {
		return nil, err
	}

	req := tools.SpawnRequest{
		TaskID:  template.Resolve(cfg.TaskID, input, rc.Outputs),
		Title:   template.Resolve(cfg.Title, input, rc.Outputs),
		Model:   cfg.Model,
		Project: cfg.Project,
	}

	if req.TaskID == "" && req.Title == "" {
		return nil, errors.New("spawn_agent node needs a task_id or title")
	}

	if rc.DryRun {
		return dryRunResult(fmt.Sprintf("would spawn agent for task %q title %q", req.TaskID, req.Title)), nil
	}

	if err := e.Spawner.Spawn(ctx, req); err != nil {
		return nil, fmt.Errorf("spawn agent failed: %w", err)
	}

	return map[string]any{"spawned": true, "task_id": req.TaskID, "title": req.Title}, nil
}
