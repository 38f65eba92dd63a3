package executors

import (
	"context"
	"fmt"
	"time"

	"github.com/graphflow/graphflow/pkg/models"
)

// TriggerExecutor serves all three trigger kinds. Triggers never perform
// side effects: they pass the run's event payload downstream when present,
// otherwise they emit a minimal fired marker.
type TriggerExecutor struct{}

func (e *TriggerExecutor) Execute(_ context.Context, node *models.Node, _ any, rc *RunContext) (any, error) {
	out := rc.EventData
	if out == nil {
		out = map[string]any{
			"fired_at": time.Now().UTC().Format(time.RFC3339),
			"trigger":  string(rc.Trigger),
			"node_id":  node.ID,
		}
	}

	if rc.DryRun {
		return markDryRun(out, fmt.Sprintf("trigger %s fired", node.ID)), nil
	}

	return out, nil
}
