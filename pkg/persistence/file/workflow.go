package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/persistence"
)

// WorkflowRepository stores each workflow as workflows/<id>.json.
type WorkflowRepository struct {
	root string
}

func (r *WorkflowRepository) path(id string) string {
	return filepath.Join(r.root, "workflows", id+".json")
}

func (r *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	root := os.DirFS(filepath.Join(r.root, "workflows"))

	files, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(files))

	for _, file := range files {
		id := strings.TrimSuffix(file, ".json")

		workflow, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (r *WorkflowRepository) ListEnabled(ctx context.Context) ([]*models.Workflow, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	enabled := make([]*models.Workflow, 0, len(all))

	for _, workflow := range all {
		if workflow.Enabled {
			enabled = append(enabled, workflow)
		}
	}

	return enabled, nil
}

func (r *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	raw, err := os.ReadFile(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to read workflow %s: %w", id, err)
	}

	workflow := &models.Workflow{}
	if err := json.Unmarshal(raw, workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}

	return workflow, nil
}

func (r *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	raw, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", workflow.ID, err)
	}

	if err := os.WriteFile(r.path(workflow.ID), raw, 0o644); err != nil {
		return fmt.Errorf("failed to write workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(r.path(id))
	if os.IsNotExist(err) {
		return persistence.ErrWorkflowNotFound
	}

	return err
}
