// Package scheduler runs cron trigger nodes. Enabled workflows with a cron
// trigger are registered as cron entries; each firing dispatches one run
// through the engine.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/graphflow/graphflow/pkg/engine"
	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/persistence"
)

// Runner starts workflow runs. Satisfied by *engine.Engine.
type Runner interface {
	Execute(ctx context.Context, workflow *models.Workflow, opts engine.Options) (*models.Run, error)
}

// Scheduler owns one cron instance. Reload rebuilds the entry set from the
// store, so workflow edits take effect without restarting the process.
type Scheduler struct {
	logger *slog.Logger
	store  persistence.Persistence
	runner Runner

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID // workflow id + node id -> entry
}

func New(logger *slog.Logger, store persistence.Persistence, runner Runner) *Scheduler {
	return &Scheduler{
		logger: logger.With("module", "scheduler"),
		store:  store,
		runner: runner,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		entries: make(map[string]cron.EntryID),
	}
}

// ValidateSchedule reports whether expr is a parseable standard cron
// expression.
func ValidateSchedule(expr string) error {
	if expr == "" {
		return fmt.Errorf("cron schedule is required")
	}

	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	return nil
}

// Start registers entries for all enabled workflows and starts the cron
// loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	return nil
}

// Reload replaces the registered entries with the cron triggers of the
// currently enabled workflows.
func (s *Scheduler) Reload(ctx context.Context) error {
	workflows, err := s.store.WorkflowRepository().ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workflows for scheduling: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, id := range s.entries {
		s.cron.Remove(id)
		delete(s.entries, key)
	}

	for _, workflow := range workflows {
		for _, node := range workflow.Nodes {
			if node.Kind != models.KindCronTrigger {
				continue
			}

			if err := s.register(workflow, node); err != nil {
				s.logger.Warn("Skipping cron trigger", "workflow_id", workflow.ID, "node_id", node.ID, "error", err)
			}
		}
	}

	s.logger.Info("Scheduler reloaded", "entries", len(s.entries))

	return nil
}

func (s *Scheduler) register(workflow *models.Workflow, node *models.Node) error {
	cfg, err := node.CronTriggerConfig()
	if err != nil {
		return err
	}

	if err := ValidateSchedule(cfg.Schedule); err != nil {
		return err
	}

	workflowID, nodeID := workflow.ID, node.ID

	id, err := s.cron.AddFunc(cfg.Schedule, func() {
		s.fire(workflowID, nodeID)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron entry: %w", err)
	}

	s.entries[workflowID+"/"+nodeID] = id
	s.logger.Info("Registered cron trigger", "workflow_id", workflowID, "node_id", nodeID, "schedule", cfg.Schedule)

	return nil
}

// fire re-reads the workflow before dispatching so a disable or edit that
// landed after the last Reload is honored.
func (s *Scheduler) fire(workflowID, nodeID string) {
	ctx := context.Background()

	workflow, err := s.store.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		s.logger.Error("Cron fire failed to load workflow", "workflow_id", workflowID, "error", err)

		return
	}

	if !workflow.Enabled {
		s.logger.Debug("Cron fire skipped disabled workflow", "workflow_id", workflowID)

		return
	}

	s.logger.Info("Cron triggered workflow", "workflow_id", workflowID, "node_id", nodeID)

	_, err = s.runner.Execute(ctx, workflow, engine.Options{
		Trigger: models.TriggerCron,
		EventData: map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"node_id":   nodeID,
		},
	})
	if err != nil {
		s.logger.Error("Cron-triggered run failed to persist", "workflow_id", workflowID, "error", err)
	}
}

// Stop halts the cron loop and waits for in-flight jobs.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
