package web

import "github.com/graphflow/graphflow/pkg/models"

// WorkflowRequest is the request body for creating or replacing a workflow.
type WorkflowRequest struct {
	Name        string          `json:"name"        validate:"required,min=3"`
	Description string          `json:"description"`
	Enabled     bool            `json:"enabled"`
	Nodes       []*models.Node  `json:"nodes"`
	Edges       []*models.Edge  `json:"edges"`
}

func (r *WorkflowRequest) toModel() *models.Workflow {
	return &models.Workflow{
		Name:        r.Name,
		Description: r.Description,
		Enabled:     r.Enabled,
		Nodes:       r.Nodes,
		Edges:       r.Edges,
	}
}

// RunRequest is the request body for starting a manual run.
type RunRequest struct {
	DryRun    bool           `json:"dry_run"`
	EventData map[string]any `json:"event_data"`
}

// EmitEventRequest is the request body for publishing an event.
type EmitEventRequest struct {
	Type    string         `json:"type"   validate:"required"`
	Source  string         `json:"source"`
	Data    map[string]any `json:"data"`
	Project string         `json:"project"`
}
