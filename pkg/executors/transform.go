package executors

import (
	"context"
	"fmt"

	"github.com/graphflow/graphflow/pkg/expression"
	"github.com/graphflow/graphflow/pkg/models"
)

// TransformExecutor runs a pure data-mapping expression against the input
// and returns its result verbatim as the node's output. Two languages are
// supported: expr (default) and jq. Neither can perform I/O.
type TransformExecutor struct {
	Evaluator *expression.Evaluator
}

func (e *TransformExecutor) Execute(_ context.Context, node *models.Node, input any, rc *RunContext) (any, error) {
	cfg, err := node.TransformConfig()
	if err != nil {
		return nil, err
	}

	var out any

	switch cfg.Language {
	case models.TransformLanguageExpr:
		out, err = e.Evaluator.Eval(cfg.Expression, map[string]any{"input": input})
	case models.TransformLanguageJQ:
		out, err = expression.EvalJQ(cfg.Expression, input)
	default:
		return nil, fmt.Errorf("unknown transform language %q", cfg.Language)
	}

	if err != nil {
		return nil, fmt.Errorf("transform failed: %w", err)
	}

	if rc.DryRun {
		description := fmt.Sprintf("transform %s evaluated", node.ID)
		if m, ok := out.(map[string]any); ok {
			return markDryRun(m, description), nil
		}

		return markDryRun(map[string]any{"result": out}, description), nil
	}

	return out, nil
}
