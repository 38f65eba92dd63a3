// Package persistence provides the storage abstraction for workflow
// definitions and run records.
package persistence

import (
	"context"

	"github.com/graphflow/graphflow/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	RunRepository() RunRepository

	// NewRunID mints an identifier for a run record before it is saved.
	NewRunID() string

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

type WorkflowRepository interface {
	List(ctx context.Context) ([]*models.Workflow, error)
	ListEnabled(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

type RunRepository interface {
	SaveRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Run, error)
}
