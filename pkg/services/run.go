package services

import (
	"context"
	"fmt"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/persistence"
)

// ErrRunNotFound is returned when a run record is not found.
var ErrRunNotFound = persistence.ErrRunNotFound

// Run provides read access to run records.
type Run struct {
	persistence persistence.Persistence
}

func NewRun(persistence persistence.Persistence) *Run {
	return &Run{persistence: persistence}
}

// FetchByID retrieves a run record by its ID.
func (r *Run) FetchByID(ctx context.Context, id string) (*models.Run, error) {
	return r.persistence.RunRepository().GetRun(ctx, id)
}

// ListByWorkflow retrieves a workflow's run records, most recent first.
func (r *Run) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Run, error) {
	runs, err := r.persistence.RunRepository().ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}
