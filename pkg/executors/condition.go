package executors

import (
	"context"
	"fmt"

	"github.com/graphflow/graphflow/pkg/expression"
	"github.com/graphflow/graphflow/pkg/models"
)

// ConditionExecutor evaluates a boolean expression against the resolved
// input and produces the branch routing downstream edges. An evaluation
// failure is logged and treated as false, never as a node error.
type ConditionExecutor struct {
	Evaluator *expression.Evaluator
}

func (e *ConditionExecutor) Execute(_ context.Context, node *models.Node, input any, rc *RunContext) (any, error) {
	cfg, err := node.ConditionConfig()
	if err != nil {
		return nil, err
	}

	result, err := e.Evaluator.EvalBool(cfg.Expression, map[string]any{"input": input})
	if err != nil {
		rc.Logger.Warn("Condition evaluation failed, treating as false",
			"node_id", node.ID, "expression", cfg.Expression, "error", err)

		result = false
	}

	branch := models.PortFalse
	if result {
		branch = models.PortTrue
	}

	out := map[string]any{"branch": branch}

	if rc.DryRun {
		return markDryRun(out, fmt.Sprintf("condition evaluated, branch %q", branch)), nil
	}

	return out, nil
}
