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

type RunRepository struct {
	db *sql.DB
}

func (r *RunRepository) SaveRun(ctx context.Context, run *models.Run) error {
	raw, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (id, workflow_id, started_at, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		run.ID, run.WorkflowID, run.StartedAt, raw)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	return nil
}

func (r *RunRepository) GetRun(ctx context.Context, id string) (*models.Run, error) {
	var raw []byte

	err := r.db.QueryRowContext(ctx, `SELECT data FROM runs WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrRunNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	run := &models.Run{}
	if err := json.Unmarshal(raw, run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}

	return run, nil
}

func (r *RunRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM runs WHERE workflow_id = $1 ORDER BY started_at DESC`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var runs []*models.Run

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		run := &models.Run{}
		if err := json.Unmarshal(raw, run); err != nil {
			return nil, fmt.Errorf("failed to decode run: %w", err)
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}
