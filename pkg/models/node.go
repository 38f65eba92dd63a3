package models

import (
	"encoding/json"
	"fmt"
)

// NodeKind enumerates every node type the engine can execute. The set is
// closed: executor selection switches over it, so an unknown kind is a
// validation error, never a runtime dispatch miss.
type NodeKind string

const (
	KindManualTrigger NodeKind = "trigger:manual"
	KindCronTrigger   NodeKind = "trigger:cron"
	KindEventTrigger  NodeKind = "trigger:event"
	KindLLM           NodeKind = "llm"
	KindCreateTask    NodeKind = "create_task"
	KindSendMessage   NodeKind = "send_message"
	KindRunCommand    NodeKind = "run_command"
	KindSpawnAgent    NodeKind = "spawn_agent"
	KindBrowser       NodeKind = "browser"
	KindCondition     NodeKind = "condition"
	KindTransform     NodeKind = "transform"
)

// AllNodeKinds lists every valid kind, trigger kinds first.
var AllNodeKinds = []NodeKind{
	KindManualTrigger,
	KindCronTrigger,
	KindEventTrigger,
	KindLLM,
	KindCreateTask,
	KindSendMessage,
	KindRunCommand,
	KindSpawnAgent,
	KindBrowser,
	KindCondition,
	KindTransform,
}

func (k NodeKind) Valid() bool {
	for _, kind := range AllNodeKinds {
		if k == kind {
			return true
		}
	}

	return false
}

// IsTrigger reports whether the kind starts runs rather than consuming data.
func (k NodeKind) IsTrigger() bool {
	return k == KindManualTrigger || k == KindCronTrigger || k == KindEventTrigger
}

// Condition nodes expose two output ports; every other kind exposes one.
const (
	PortTrue  = "true"
	PortFalse = "false"
	PortMain  = "main"
)

// Node is one node instance in a workflow. Position is presentation-only
// state kept for the graph editor.
type Node struct {
	ID        string         `json:"id"   validate:"required"`
	Kind      NodeKind       `json:"kind" validate:"required"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config,omitempty"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

func (n *Node) IsTrigger() bool {
	return n.Kind.IsTrigger()
}

// OutputPorts returns the output port names for the node's kind.
func (n *Node) OutputPorts() []string {
	switch {
	case n.Kind == KindCondition:
		return []string{PortTrue, PortFalse}
	default:
		return []string{PortMain}
	}
}

// Typed configuration records, one per kind that carries configuration.
// Node.Config stays a JSON-friendly map on the wire; these accessors give
// executors a strongly-typed view of it.

type LLMConfig struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

type CreateTaskConfig struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

type SendMessageConfig struct {
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}

type RunCommandConfig struct {
	Command        string `json:"command"`
	WorkingDir     string `json:"working_dir,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

type SpawnAgentConfig struct {
	TaskID  string `json:"task_id,omitempty"`
	Title   string `json:"title,omitempty"`
	Model   string `json:"model,omitempty"`
	Project string `json:"project,omitempty"`
}

// Browser sub-actions and their required config fields.
const (
	BrowserActionNavigate   = "navigate"
	BrowserActionScreenshot = "screenshot"
	BrowserActionEval       = "eval"
	BrowserActionClick      = "click"
	BrowserActionWait       = "wait"
)

type BrowserConfig struct {
	Action    string `json:"action"`
	URL       string `json:"url,omitempty"`
	Code      string `json:"code,omitempty"`
	Selector  string `json:"selector,omitempty"`
	TimeoutMs int    `json:"timeout_ms,omitempty"`
}

type ConditionConfig struct {
	Expression string `json:"expression"`
}

// Transform languages. Both are pure data mapping with no I/O capability.
const (
	TransformLanguageExpr = "expr"
	TransformLanguageJQ   = "jq"
)

type TransformConfig struct {
	Expression string `json:"expression"`
	Language   string `json:"language,omitempty"` // "expr" (default) or "jq"
}

type CronTriggerConfig struct {
	Schedule string `json:"schedule"`
}

type EventTriggerConfig struct {
	EventType string `json:"event_type"`
	Filter    string `json:"filter,omitempty"`
}

func decodeConfig(kind NodeKind, config map[string]any, out any) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("invalid %s config: %w", kind, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid %s config: %w", kind, err)
	}

	return nil
}

func (n *Node) LLMConfig() (*LLMConfig, error) {
	cfg := &LLMConfig{}

	return cfg, decodeConfig(n.Kind, n.Config, cfg)
}

func (n *Node) CreateTaskConfig() (*CreateTaskConfig, error) {
	cfg := &CreateTaskConfig{}

	return cfg, decodeConfig(n.Kind, n.Config, cfg)
}

func (n *Node) SendMessageConfig() (*SendMessageConfig, error) {
	cfg := &SendMessageConfig{}

	return cfg, decodeConfig(n.Kind, n.Config, cfg)
}

func (n *Node) RunCommandConfig() (*RunCommandConfig, error) {
	cfg := &RunCommandConfig{}

	return cfg, decodeConfig(n.Kind, n.Config, cfg)
}

func (n *Node) SpawnAgentConfig() (*SpawnAgentConfig, error) {
	cfg := &SpawnAgentConfig{}

	return cfg, decodeConfig(n.Kind, n.Config, cfg)
}

func (n *Node) BrowserConfig() (*BrowserConfig, error) {
	cfg := &BrowserConfig{}

	return cfg, decodeConfig(n.Kind, n.Config, cfg)
}

func (n *Node) ConditionConfig() (*ConditionConfig, error) {
	cfg := &ConditionConfig{}

	return cfg, decodeConfig(n.Kind, n.Config, cfg)
}

func (n *Node) TransformConfig() (*TransformConfig, error) {
	cfg := &TransformConfig{}

	if err := decodeConfig(n.Kind, n.Config, cfg); err != nil {
		return nil, err
	}

	if cfg.Language == "" {
		cfg.Language = TransformLanguageExpr
	}

	return cfg, nil
}

func (n *Node) CronTriggerConfig() (*CronTriggerConfig, error) {
	cfg := &CronTriggerConfig{}

	return cfg, decodeConfig(n.Kind, n.Config, cfg)
}

func (n *Node) EventTriggerConfig() (*EventTriggerConfig, error) {
	cfg := &EventTriggerConfig{}

	return cfg, decodeConfig(n.Kind, n.Config, cfg)
}
