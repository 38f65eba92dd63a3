package executors

import (
	"context"
	"fmt"
	"strconv"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/template"
	"github.com/graphflow/graphflow/pkg/tools"
)

// BrowserExecutor dispatches one browser automation sub-action. Each
// sub-action has a distinct required config field and fails before any
// collaborator call when it is absent.
type BrowserExecutor struct {
	Browser tools.BrowserClient
}

func (e *BrowserExecutor) Execute(ctx context.Context, node *models.Node, input any, rc *RunContext) (any, error) {
	cfg, err := node.BrowserConfig()
	if err != nil {
		return nil, err
	}

	args := map[string]string{}

	switch cfg.Action {
	case models.BrowserActionNavigate:
		if cfg.URL == "" {
			return nil, fmt.Errorf("browser action %q requires 'url'", cfg.Action)
		}

		args["url"] = template.Resolve(cfg.URL, input, rc.Outputs)
	case models.BrowserActionScreenshot:
		// No required field.
	case models.BrowserActionEval:
		if cfg.Code == "" {
			return nil, fmt.Errorf("browser action %q requires 'code'", cfg.Action)
		}

		args["code"] = cfg.Code
	case models.BrowserActionClick:
		if cfg.Selector == "" {
			return nil, fmt.Errorf("browser action %q requires 'selector'", cfg.Action)
		}

		args["selector"] = cfg.Selector
	case models.BrowserActionWait:
		if cfg.Selector == "" && cfg.TimeoutMs <= 0 {
			return nil, fmt.Errorf("browser action %q requires 'selector' or 'timeout_ms'", cfg.Action)
		}

		if cfg.Selector != "" {
			args["selector"] = cfg.Selector
		}

		if cfg.TimeoutMs > 0 {
			args["timeout"] = strconv.Itoa(cfg.TimeoutMs)
		}
	default:
		return nil, fmt.Errorf("unknown browser action %q", cfg.Action)
	}

	if rc.DryRun {
		return dryRunResult(fmt.Sprintf("would run browser action %q", cfg.Action)), nil
	}

	out, err := e.Browser.Do(ctx, cfg.Action, args)
	if err != nil {
		return nil, fmt.Errorf("browser action %q failed: %w", cfg.Action, err)
	}

	return out, nil
}
