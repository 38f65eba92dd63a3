package executors

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/template"
	"github.com/graphflow/graphflow/pkg/tools"
)

// CreateTaskExecutor interpolates title/description and creates a task
// through the task CLI collaborator, returning its stdout.
type CreateTaskExecutor struct {
	Tasks tools.TaskClient
}

func (e *CreateTaskExecutor) Execute(ctx context.Context, node *models.Node, input any, rc *RunContext) (any, error) {
	cfg, err := node.CreateTaskConfig()
	if err != nil {
		return nil, err
	}

	title := template.Resolve(cfg.Title, input, rc.Outputs)
	if title == "" {
		return nil, errors.New("task title resolved to empty string")
	}

	description := template.Resolve(cfg.Description, input, rc.Outputs)

	if rc.DryRun {
		return dryRunResult(fmt.Sprintf("would create task %q", title)), nil
	}

	out, err := e.Tasks.Create(ctx, title, description, cfg.Type, cfg.Priority, cfg.Labels)
	if err != nil {
		return nil, fmt.Errorf("create task failed: %w", err)
	}

	return out, nil
}
