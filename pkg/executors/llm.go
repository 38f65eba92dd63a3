package executors

import (
	"context"
	"fmt"
	"time"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/template"
	"github.com/graphflow/graphflow/pkg/tools"
)

// llmTimeout bounds every LLM CLI invocation.
const llmTimeout = 120 * time.Second

// LLMExecutor interpolates the prompt template and hands it to the LLM CLI
// collaborator, returning the raw text output.
type LLMExecutor struct {
	LLM tools.LLMClient
}

func (e *LLMExecutor) Execute(ctx context.Context, node *models.Node, input any, rc *RunContext) (any, error) {
	cfg, err := node.LLMConfig()
	if err != nil {
		return nil, err
	}

	prompt := template.Resolve(cfg.Prompt, input, rc.Outputs)

	if rc.DryRun {
		return dryRunResult(fmt.Sprintf("would send prompt (%d chars) to llm", len(prompt))), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	out, err := e.LLM.Complete(callCtx, cfg.Model, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}

	return out, nil
}
