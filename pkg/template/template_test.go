package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_InputPath(t *testing.T) {
	input := map[string]any{"title": "Fix bug", "meta": map[string]any{"priority": "high"}}

	assert.Equal(t, "Fix bug", Resolve("{{input.title}}", input, nil))
	assert.Equal(t, "high", Resolve("{{input.meta.priority}}", input, nil))
	assert.Equal(t, "task: Fix bug (high)", Resolve("task: {{input.title}} ({{input.meta.priority}})", input, nil))
}

func TestResolve_ResultAliasesInput(t *testing.T) {
	input := map[string]any{"title": "Fix bug"}

	assert.Equal(t, "Fix bug", Resolve("{{result.title}}", input, nil))
	assert.Equal(t, Resolve("{{input}}", input, nil), Resolve("{{result}}", input, nil))
}

func TestResolve_BareInput(t *testing.T) {
	assert.Equal(t, "hello", Resolve("{{input}}", "hello", nil))
	assert.Equal(t, "42", Resolve("{{input}}", float64(42), nil))
	assert.Equal(t, "true", Resolve("{{input}}", true, nil))
	assert.Equal(t, `{"a":1}`, Resolve("{{input}}", map[string]any{"a": 1}, nil))
	assert.Equal(t, "", Resolve("{{input}}", nil, nil))
}

func TestResolve_JSONStringInput(t *testing.T) {
	input := `{"title":"Fix bug"}`

	assert.Equal(t, "Fix bug", Resolve("{{input.title}}", input, nil))
}

func TestResolve_OpaqueStringInput(t *testing.T) {
	// Not JSON: path lookup yields nothing, bare input passes through.
	assert.Equal(t, "", Resolve("{{input.title}}", "plain text", nil))
	assert.Equal(t, "plain text", Resolve("{{input}}", "plain text", nil))
}

func TestResolve_NodeOutput(t *testing.T) {
	outputs := map[string]any{
		"fetch": map[string]any{"status": float64(200)},
		"greet": "hello",
	}

	assert.Equal(t, "hello", Resolve("{{greet.output}}", nil, outputs))
	assert.Equal(t, `{"status":200}`, Resolve("{{fetch.output}}", nil, outputs))
	assert.Equal(t, "", Resolve("{{missingNode.output}}", nil, outputs))
}

func TestResolve_UnmatchedSegments(t *testing.T) {
	input := map[string]any{"a": map[string]any{"b": "c"}}

	assert.Equal(t, "", Resolve("{{input.a.missing}}", input, nil))
	assert.Equal(t, "", Resolve("{{input.a.b.deeper}}", input, nil))
	assert.Equal(t, "", Resolve("{{unknown}}", input, nil))
}

func TestResolve_NoPlaceholders(t *testing.T) {
	assert.Equal(t, "just text", Resolve("just text", nil, nil))
}

func TestResolve_UnclosedMarker(t *testing.T) {
	assert.Equal(t, "before {{input.title", Resolve("before {{input.title", map[string]any{"title": "x"}, nil))
}
