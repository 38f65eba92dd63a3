package models

import "time"

// TriggerKind records what started a run.
type TriggerKind string

const (
	TriggerManual TriggerKind = "manual"
	TriggerCron   TriggerKind = "cron"
	TriggerEvent  TriggerKind = "event"
)

// RunStatus is the aggregate outcome of a run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

// NodeStatus is the terminal state of a single node within a run.
type NodeStatus string

const (
	NodeStatusPending NodeStatus = "pending"
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
	NodeStatusSkipped NodeStatus = "skipped"
)

// Run is the persisted record of one workflow execution. The JSON field
// names are a compatibility contract with the run store and its consumers;
// they stay camelCase even though the rest of the models are snake_case.
type Run struct {
	ID          string                          `json:"id"`
	WorkflowID  string                          `json:"workflowId"`
	Trigger     TriggerKind                     `json:"trigger"`
	Status      RunStatus                       `json:"status"`
	StartedAt   time.Time                       `json:"startedAt"`
	CompletedAt time.Time                       `json:"completedAt"`
	DurationMs  int64                           `json:"durationMs"`
	NodeResults map[string]*NodeExecutionResult `json:"nodeResults"`
	// Error is set only when scheduling itself failed (e.g. a cycle);
	// per-node failures live in NodeResults.
	Error string `json:"error,omitempty"`
}

// NodeExecutionResult records one node's execution within a run. Input and
// Output are opaque to the engine: any JSON-like value.
type NodeExecutionResult struct {
	Status      NodeStatus `json:"status"`
	Input       any        `json:"input,omitempty"`
	Output      any        `json:"output,omitempty"`
	DurationMs  int64      `json:"durationMs"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt time.Time  `json:"completedAt"`
	Error       string     `json:"error,omitempty"`
}
