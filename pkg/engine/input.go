package engine

import (
	"github.com/graphflow/graphflow/pkg/models"
)

// resolveInput determines a node's input from its incoming edges and the
// results accumulated so far, or decides the node must be skipped.
//
// Rules, in order:
//   - No incoming edges: triggers get the run's event data (when present),
//     everything else gets nil.
//   - Edges whose source is skipped or errored are inactive. If nothing
//     remains active, the node is skipped.
//   - An active edge from a condition node participates only when its port
//     matches the condition's resolved branch; the match supplies the
//     condition's own pass-through input. Non-matching condition edges are
//     inactive.
//   - Otherwise the first active source with a successful result supplies
//     its output.
func resolveInput(
	workflow *models.Workflow,
	node *models.Node,
	eventData map[string]any,
	results map[string]*models.NodeExecutionResult,
) (any, bool) {
	incoming := workflow.EdgesInto(node.ID)

	if len(incoming) == 0 {
		if node.IsTrigger() && eventData != nil {
			return eventData, false
		}

		return nil, false
	}

	var active []*models.NodeExecutionResult

	for _, edge := range incoming {
		sourceResult, ok := results[edge.SourceNode]
		if !ok || sourceResult.Status == models.NodeStatusSkipped || sourceResult.Status == models.NodeStatusError {
			continue
		}

		source := workflow.NodeByID(edge.SourceNode)
		if source != nil && source.Kind == models.KindCondition {
			if edge.SourcePort != conditionBranch(sourceResult) {
				// Inactive branch.
				continue
			}

			// Condition nodes pass their own input through to the
			// active branch.
			return sourceResult.Input, false
		}

		active = append(active, sourceResult)
	}

	for _, sourceResult := range active {
		if sourceResult.Status == models.NodeStatusSuccess {
			return sourceResult.Output, false
		}
	}

	return nil, true
}

func conditionBranch(result *models.NodeExecutionResult) string {
	output, ok := result.Output.(map[string]any)
	if !ok {
		return ""
	}

	branch, _ := output["branch"].(string)

	return branch
}
