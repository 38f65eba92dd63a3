package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/graphflow/graphflow/pkg/models"
)

func TestResolveInput_NoEdges(t *testing.T) {
	workflow := &models.Workflow{
		Nodes: []*models.Node{
			triggerNode("start"),
			transformNode("lonely", "input"),
		},
	}

	eventData := map[string]any{"path": "main.go"}

	input, skip := resolveInput(workflow, workflow.Nodes[0], eventData, nil)
	assert.False(t, skip)
	assert.Equal(t, eventData, input, "triggers receive the run's event data")

	input, skip = resolveInput(workflow, workflow.Nodes[1], eventData, nil)
	assert.False(t, skip)
	assert.Nil(t, input, "non-trigger roots start from nil")
}

func TestResolveInput_SourceStates(t *testing.T) {
	workflow := &models.Workflow{
		Nodes: []*models.Node{
			transformNode("a", "input"),
			transformNode("b", "input"),
			transformNode("sink", "input"),
		},
		Edges: []*models.Edge{
			wire("a", models.PortMain, "sink"),
			wire("b", models.PortMain, "sink"),
		},
	}

	sink := workflow.NodeByID("sink")

	// First active successful source wins.
	results := map[string]*models.NodeExecutionResult{
		"a": {Status: models.NodeStatusError, Error: "boom"},
		"b": {Status: models.NodeStatusSuccess, Output: "from b"},
	}

	input, skip := resolveInput(workflow, sink, nil, results)
	assert.False(t, skip)
	assert.Equal(t, "from b", input)

	// Every source inactive: skip.
	results["b"] = &models.NodeExecutionResult{Status: models.NodeStatusSkipped}

	_, skip = resolveInput(workflow, sink, nil, results)
	assert.True(t, skip)
}

func TestResolveInput_ConditionBranches(t *testing.T) {
	workflow := &models.Workflow{
		Nodes: []*models.Node{
			conditionNode("check", "input.ok"),
			transformNode("yes", "input"),
			transformNode("no", "input"),
		},
		Edges: []*models.Edge{
			wire("check", models.PortTrue, "yes"),
			wire("check", models.PortFalse, "no"),
		},
	}

	conditionInput := map[string]any{"ok": true}
	results := map[string]*models.NodeExecutionResult{
		"check": {
			Status: models.NodeStatusSuccess,
			Input:  conditionInput,
			Output: map[string]any{"branch": "true"},
		},
	}

	input, skip := resolveInput(workflow, workflow.NodeByID("yes"), nil, results)
	assert.False(t, skip)
	assert.Equal(t, conditionInput, input, "matching branch receives the condition's input")

	_, skip = resolveInput(workflow, workflow.NodeByID("no"), nil, results)
	assert.True(t, skip, "non-matching branch is skipped")
}
