package executors

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/template"
	"github.com/graphflow/graphflow/pkg/tools"
)

// SendMessageExecutor interpolates the message body and sends it to the
// configured recipient. The thread tag is derived from the workflow id so
// repeated runs of one workflow land in one conversation.
type SendMessageExecutor struct {
	Messenger tools.MessengerClient
}

func (e *SendMessageExecutor) Execute(ctx context.Context, node *models.Node, input any, rc *RunContext) (any, error) {
	cfg, err := node.SendMessageConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Recipient == "" {
		return nil, errors.New("send_message node has no recipient")
	}

	body := template.Resolve(cfg.Body, input, rc.Outputs)
	thread := "workflow-" + rc.WorkflowID

	if rc.DryRun {
		return dryRunResult(fmt.Sprintf("would message %s on thread %s", cfg.Recipient, thread)), nil
	}

	out, err := e.Messenger.Send(ctx, cfg.Recipient, body, thread)
	if err != nil {
		return nil, fmt.Errorf("send message failed: %w", err)
	}

	return out, nil
}
