// Package file provides file-based persistence for workflows and runs.
// Each document is one JSON file under the root directory; good for local
// development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/graphflow/graphflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	runRepo      *RunRepository
}

func NewPersistence(root string) (*Persistence, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	for _, dir := range []string{cleanRoot, cleanRoot + "/workflows", cleanRoot + "/runs"} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: &WorkflowRepository{root: cleanRoot},
		runRepo:      &RunRepository{root: cleanRoot},
	}, nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) RunRepository() persistence.RunRepository {
	return p.runRepo
}

func (p *Persistence) NewRunID() string {
	return uuid.New().String()
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close is a no-op for file persistence.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
