// Package postgresql provides PostgreSQL-backed persistence for workflows
// and runs. Documents are stored as JSONB blobs: the engine treats node
// payloads as opaque, so a normalized schema would buy nothing.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver

	"github.com/graphflow/graphflow/pkg/persistence"
)

type Persistence struct {
	db           *sql.DB
	workflowRepo *WorkflowRepository
	runRepo      *RunRepository
}

func NewPersistence(databaseURL string) (*Persistence, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	p := &Persistence{
		db:           db,
		workflowRepo: &WorkflowRepository{db: db},
		runRepo:      &RunRepository{db: db},
	}

	if err := p.migrate(context.Background()); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Persistence) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			enabled BOOLEAN NOT NULL DEFAULT FALSE,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			data JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_workflow_id ON runs (workflow_id, started_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
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

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Persistence) Close(_ context.Context) error {
	return p.db.Close()
}
