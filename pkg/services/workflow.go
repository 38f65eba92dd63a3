// Package services carries the application logic between the HTTP API and
// the persistence layer.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/persistence"
	"github.com/graphflow/graphflow/pkg/scheduler"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Workflow provides workflow CRUD with full validation: struct tags,
// graph structure, and per-node config schemas.
type Workflow struct {
	persistence persistence.Persistence
	validate    *validator.Validate
}

func NewWorkflow(persistence persistence.Persistence) *Workflow {
	return &Workflow{
		persistence: persistence,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := w.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves all workflows.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.persistence.WorkflowRepository().GetByID(ctx, id)
}

// Create validates and stores a new workflow. The ID and timestamps are
// assigned here; any ID sent by the caller is ignored.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := w.Validate(workflow); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workflow.ID = uuid.New().String()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// Update replaces an existing workflow, keeping its ID and creation time.
func (w *Workflow) Update(ctx context.Context, workflowID string, workflow *models.Workflow) (*models.Workflow, error) {
	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	workflow.ID = workflowID

	if err := w.Validate(workflow); err != nil {
		return nil, err
	}

	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return workflow, nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	return w.persistence.WorkflowRepository().Delete(ctx, workflowID)
}

// Validate runs every validation layer against the workflow: struct tags,
// graph structure, per-node config schemas, and cron schedules. Returns a
// ValidationError describing the first failure.
func (w *Workflow) Validate(workflow *models.Workflow) error {
	if err := w.validate.Struct(workflow); err != nil {
		return NewValidationError("workflow", err)
	}

	if err := workflow.ValidateStructure(); err != nil {
		return NewValidationError("structure", err)
	}

	for _, node := range workflow.Nodes {
		if err := models.ValidateNodeConfig(node); err != nil {
			return NewValidationError("node "+node.ID, err)
		}

		if node.Kind == models.KindCronTrigger {
			cfg, err := node.CronTriggerConfig()
			if err != nil {
				return NewValidationError("node "+node.ID, err)
			}

			if err := scheduler.ValidateSchedule(cfg.Schedule); err != nil {
				return NewValidationError("node "+node.ID, err)
			}
		}
	}

	return nil
}
