// Package engine orchestrates single workflow runs: topological scheduling,
// per-node input resolution across conditional branches, partial-failure
// propagation, and run record persistence.
package engine

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/graphflow/graphflow/pkg/executors"
	"github.com/graphflow/graphflow/pkg/graph"
	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/otelhelper"
	"github.com/graphflow/graphflow/pkg/persistence"
)

// Options configures one run. Cancel is checked once per node boundary: an
// executor call already in flight is allowed to finish, and later nodes are
// recorded as skipped rather than aborting the run's bookkeeping.
type Options struct {
	Trigger   models.TriggerKind
	DryRun    bool
	EventData map[string]any
	Project   string
	Cancel    <-chan struct{}
}

// Engine executes workflows. Multiple runs may be in flight concurrently;
// within one run, nodes execute strictly one at a time in topological
// order, never in parallel, even for independent subgraphs. Callers and the
// run log depend on that ordering.
type Engine struct {
	logger *slog.Logger
	store  persistence.Persistence
	set    *executors.Set
	tracer trace.Tracer
}

func New(logger *slog.Logger, store persistence.Persistence, set *executors.Set) *Engine {
	return &Engine{
		logger: logger.With("module", "engine"),
		store:  store,
		set:    set,
		tracer: otel.Tracer("graphflow/engine"),
	}
}

// Execute runs the workflow once and always returns a completed Run record,
// even on total failure. The returned error reports only a persistence
// failure while saving the record; execution failures live inside the Run.
func (e *Engine) Execute(ctx context.Context, workflow *models.Workflow, opts Options) (*models.Run, error) {
	run := &models.Run{
		ID:          e.store.NewRunID(),
		WorkflowID:  workflow.ID,
		Trigger:     opts.Trigger,
		Status:      models.RunStatusFailed,
		StartedAt:   time.Now().UTC(),
		NodeResults: make(map[string]*models.NodeExecutionResult),
	}

	logger := e.logger.With("workflow_id", workflow.ID, "run_id", run.ID, "trigger", opts.Trigger)

	ctx, span := e.tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
		attribute.String(otelhelper.RunIDKey, run.ID),
		attribute.String(otelhelper.TriggerKindKey, string(opts.Trigger)),
		attribute.Bool(otelhelper.DryRunKey, opts.DryRun),
	))
	defer span.End()

	logger.Info("Starting workflow run", "dry_run", opts.DryRun, "nodes", len(workflow.Nodes))

	order, err := graph.Sort(workflow.Nodes, workflow.Edges)
	if err != nil {
		// Scheduling failure aborts the whole run: no node results.
		run.Error = err.Error()
		e.finish(run)
		otelhelper.SetError(span, err)
		logger.Error("Workflow scheduling failed", "error", err)

		return run, e.save(ctx, logger, run)
	}

	rc := &executors.RunContext{
		WorkflowID: workflow.ID,
		RunID:      run.ID,
		Trigger:    opts.Trigger,
		DryRun:     opts.DryRun,
		EventData:  opts.EventData,
		Outputs:    make(map[string]any),
		Logger:     logger,
	}

	for _, node := range order {
		if cancelled(opts.Cancel) {
			now := time.Now().UTC()
			run.NodeResults[node.ID] = &models.NodeExecutionResult{
				Status:      models.NodeStatusSkipped,
				StartedAt:   now,
				CompletedAt: now,
				Error:       "cancelled before execution",
			}

			continue
		}

		run.NodeResults[node.ID] = e.executeNode(ctx, workflow, node, rc, run.NodeResults)
	}

	run.Status = aggregateStatus(order, run.NodeResults)
	e.finish(run)

	logger.Info("Workflow run finished", "status", run.Status, "duration_ms", run.DurationMs)

	return run, e.save(ctx, logger, run)
}

// executeNode resolves the node's input, runs its executor, and returns the
// terminal result. Executor failures are recorded, never propagated: later
// nodes are skipped through input resolution instead.
func (e *Engine) executeNode(
	ctx context.Context,
	workflow *models.Workflow,
	node *models.Node,
	rc *executors.RunContext,
	results map[string]*models.NodeExecutionResult,
) *models.NodeExecutionResult {
	started := time.Now().UTC()

	result := &models.NodeExecutionResult{
		Status:    models.NodeStatusPending,
		StartedAt: started,
	}

	ctx, span := e.tracer.Start(ctx, "node.execute", trace.WithAttributes(
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeKindKey, string(node.Kind)),
	))
	defer span.End()

	input, skip := resolveInput(workflow, node, rc.EventData, results)
	result.Input = input

	if skip {
		result.Status = models.NodeStatusSkipped
		completeResult(result)
		rc.Logger.Debug("Node skipped", "node_id", node.ID)

		return result
	}

	executor, err := e.set.For(node.Kind)
	if err != nil {
		result.Status = models.NodeStatusError
		result.Error = err.Error()
		completeResult(result)
		otelhelper.SetError(span, err)

		return result
	}

	output, err := executor.Execute(ctx, node, input, rc)
	if err != nil {
		result.Status = models.NodeStatusError
		result.Error = err.Error()
		completeResult(result)
		otelhelper.SetError(span, err)
		rc.Logger.Warn("Node failed", "node_id", node.ID, "kind", node.Kind, "error", err)

		return result
	}

	result.Status = models.NodeStatusSuccess
	result.Output = output
	completeResult(result)
	rc.Outputs[node.ID] = output
	rc.Logger.Debug("Node succeeded", "node_id", node.ID, "duration_ms", result.DurationMs)

	return result
}

func (e *Engine) finish(run *models.Run) {
	run.CompletedAt = time.Now().UTC()
	run.DurationMs = run.CompletedAt.Sub(run.StartedAt).Milliseconds()
}

func (e *Engine) save(ctx context.Context, logger *slog.Logger, run *models.Run) error {
	if err := e.store.RunRepository().SaveRun(ctx, run); err != nil {
		logger.Error("Failed to persist run record", "error", err)

		return err
	}

	return nil
}

func completeResult(result *models.NodeExecutionResult) {
	result.CompletedAt = time.Now().UTC()
	result.DurationMs = result.CompletedAt.Sub(result.StartedAt).Milliseconds()
}

func cancelled(cancel <-chan struct{}) bool {
	if cancel == nil {
		return false
	}

	select {
	case <-cancel:
		return true
	default:
		return false
	}
}

// aggregateStatus computes the run-level status after every node reached a
// terminal state: all skipped is a failure, a mixture with errors is
// partial only if something succeeded, and success tolerates skips.
func aggregateStatus(order []*models.Node, results map[string]*models.NodeExecutionResult) models.RunStatus {
	if len(order) == 0 {
		return models.RunStatusFailed
	}

	var succeeded, failed, skipped int

	for _, node := range order {
		switch results[node.ID].Status {
		case models.NodeStatusSuccess:
			succeeded++
		case models.NodeStatusError:
			failed++
		case models.NodeStatusSkipped:
			skipped++
		case models.NodeStatusPending:
			// Unreachable: every node is terminal by now.
		}
	}

	switch {
	case skipped == len(order):
		return models.RunStatusFailed
	case failed == 0:
		return models.RunStatusSuccess
	case succeeded > 0:
		return models.RunStatusPartial
	default:
		return models.RunStatusFailed
	}
}
