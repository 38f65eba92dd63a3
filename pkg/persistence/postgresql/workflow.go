package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/persistence"
)

type WorkflowRepository struct {
	db *sql.DB
}

func (r *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	return r.list(ctx, `SELECT data FROM workflows ORDER BY created_at`)
}

func (r *WorkflowRepository) ListEnabled(ctx context.Context) ([]*models.Workflow, error) {
	return r.list(ctx, `SELECT data FROM workflows WHERE enabled ORDER BY created_at`)
}

func (r *WorkflowRepository) list(ctx context.Context, query string) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var workflows []*models.Workflow

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}

		workflow := &models.Workflow{}
		if err := json.Unmarshal(raw, workflow); err != nil {
			return nil, fmt.Errorf("failed to decode workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	return workflows, rows.Err()
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	var raw []byte

	err := r.db.QueryRowContext(ctx, `SELECT data FROM workflows WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrWorkflowNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get workflow %s: %w", id, err)
	}

	workflow := &models.Workflow{}
	if err := json.Unmarshal(raw, workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}

	return workflow, nil
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	raw, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", workflow.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workflows (id, enabled, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`,
		workflow.ID, workflow.Enabled, raw, workflow.CreatedAt, workflow.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}
