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

// RunRepository stores each run record as runs/<id>.json.
type RunRepository struct {
	root string
}

func (r *RunRepository) path(id string) string {
	return filepath.Join(r.root, "runs", id+".json")
}

func (r *RunRepository) SaveRun(_ context.Context, run *models.Run) error {
	raw, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}

	if err := os.WriteFile(r.path(run.ID), raw, 0o644); err != nil {
		return fmt.Errorf("failed to write run %s: %w", run.ID, err)
	}

	return nil
}

func (r *RunRepository) GetRun(_ context.Context, id string) (*models.Run, error) {
	raw, err := os.ReadFile(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrRunNotFound
		}

		return nil, fmt.Errorf("failed to read run %s: %w", id, err)
	}

	run := &models.Run{}
	if err := json.Unmarshal(raw, run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}

	return run, nil
}

func (r *RunRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Run, error) {
	root := os.DirFS(filepath.Join(r.root, "runs"))

	files, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list run files: %w", err)
	}

	var runs []*models.Run

	for _, file := range files {
		id := strings.TrimSuffix(file, ".json")

		run, err := r.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}

		if run.WorkflowID == workflowID {
			runs = append(runs, run)
		}
	}

	// Most recent first, matching the API's listing order.
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	return runs, nil
}
