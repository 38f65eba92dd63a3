package models

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// configSchemas holds the JSON schema for each node kind's configuration.
// Saving a workflow validates every node's config against its kind's schema
// so execution never sees a structurally broken config record.
var configSchemas = map[NodeKind]map[string]any{
	KindManualTrigger: {
		"type":                 "object",
		"additionalProperties": true,
	},
	KindCronTrigger: {
		"type": "object",
		"properties": map[string]any{
			"schedule": map[string]any{
				"type":        "string",
				"description": "Cron expression, standard five-field form",
			},
		},
		"required": []string{"schedule"},
	},
	KindEventTrigger: {
		"type": "object",
		"properties": map[string]any{
			"event_type": map[string]any{
				"type":        "string",
				"description": "Event type this trigger reacts to",
			},
			"filter": map[string]any{
				"type":        "string",
				"description": "Optional expression over the event data; must evaluate true to match",
			},
		},
		"required": []string{"event_type"},
	},
	KindLLM: {
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "Prompt template. Supports {{...}} placeholders.",
			},
			"model": map[string]any{"type": "string"},
		},
		"required": []string{"prompt"},
	},
	KindCreateTask: {
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"type":        map[string]any{"type": "string"},
			"priority":    map[string]any{"type": "string"},
			"labels": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"title"},
	},
	KindSendMessage: {
		"type": "object",
		"properties": map[string]any{
			"recipient": map[string]any{"type": "string"},
			"body":      map[string]any{"type": "string"},
		},
		"required": []string{"recipient", "body"},
	},
	KindRunCommand: {
		"type": "object",
		"properties": map[string]any{
			"command":         map[string]any{"type": "string"},
			"working_dir":     map[string]any{"type": "string"},
			"timeout_seconds": map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []string{"command"},
	},
	KindSpawnAgent: {
		"type": "object",
		"properties": map[string]any{
			"task_id": map[string]any{"type": "string"},
			"title":   map[string]any{"type": "string"},
			"model":   map[string]any{"type": "string"},
			"project": map[string]any{"type": "string"},
		},
	},
	KindBrowser: {
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []string{
					BrowserActionNavigate,
					BrowserActionScreenshot,
					BrowserActionEval,
					BrowserActionClick,
					BrowserActionWait,
				},
			},
			"url":        map[string]any{"type": "string"},
			"code":       map[string]any{"type": "string"},
			"selector":   map[string]any{"type": "string"},
			"timeout_ms": map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []string{"action"},
	},
	KindCondition: {
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Boolean expression evaluated against the resolved input",
			},
		},
		"required": []string{"expression"},
	},
	KindTransform: {
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{"type": "string"},
			"language": map[string]any{
				"type": "string",
				"enum": []string{TransformLanguageExpr, TransformLanguageJQ},
			},
		},
		"required": []string{"expression"},
	},
}

// ConfigSchema returns the JSON schema for the kind's config, or nil for an
// unknown kind.
func ConfigSchema(kind NodeKind) map[string]any {
	return configSchemas[kind]
}

// ValidateNodeConfig validates the node's config map against its kind's
// JSON schema.
func ValidateNodeConfig(node *Node) error {
	schema, ok := configSchemas[node.Kind]
	if !ok {
		return fmt.Errorf("node %q: unknown kind %q", node.ID, node.Kind)
	}

	config := node.Config
	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("node %q: schema validation: %w", node.ID, err)
	}

	if !result.Valid() {
		desc := ""
		for _, e := range result.Errors() {
			if desc != "" {
				desc += "; "
			}

			desc += e.String()
		}

		return fmt.Errorf("node %q: invalid config: %s", node.ID, desc)
	}

	return nil
}
