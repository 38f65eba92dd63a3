package executors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/template"
	"github.com/graphflow/graphflow/pkg/tools"
)

const defaultCommandTimeout = 60 * time.Second

// RunCommandExecutor interpolates the command string and executes it via
// the shell collaborator in the configured working directory.
type RunCommandExecutor struct {
	Shell tools.CommandRunner
}

func (e *RunCommandExecutor) Execute(ctx context.Context, node *models.Node, input any, rc *RunContext) (any, error) {
	cfg, err := node.RunCommandConfig()
	if err != nil {
		return nil, err
	}

	command := template.Resolve(cfg.Command, input, rc.Outputs)
	if command == "" {
		return nil, errors.New("command resolved to empty string")
	}

	timeout := defaultCommandTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	if rc.DryRun {
		return dryRunResult(fmt.Sprintf("would run command %q in %q", command, cfg.WorkingDir)), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := e.Shell.Run(callCtx, cfg.WorkingDir, command)
	if err != nil {
		return nil, fmt.Errorf("command failed: %w", err)
	}

	return out, nil
}
