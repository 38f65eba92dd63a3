// Package web provides the REST API for workflow management, manual runs,
// and event publishing.
package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/graphflow/graphflow/pkg/engine"
	"github.com/graphflow/graphflow/pkg/models"
	"github.com/graphflow/graphflow/pkg/services"
)

// Runner starts workflow runs. Satisfied by *engine.Engine.
type Runner interface {
	Execute(ctx context.Context, workflow *models.Workflow, opts engine.Options) (*models.Run, error)
}

// EventBus publishes events and serves the recent event log. Satisfied by
// *bus.Bus.
type EventBus interface {
	Emit(ctx context.Context, eventType, source string, data map[string]any, project string) (*models.Event, error)
	RecentEvents(eventType string, limit int) []*models.Event
}

// SchedulerControl reloads cron entries after workflow changes. Satisfied
// by *scheduler.Scheduler.
type SchedulerControl interface {
	Reload(ctx context.Context) error
}

type APIHandlers struct {
	workflowService *services.Workflow
	runService      *services.Run
	runner          Runner
	eventBus        EventBus
	scheduler       SchedulerControl
	validator       *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	runService *services.Run,
	runner Runner,
	eventBus EventBus,
	scheduler SchedulerControl,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		runService:      runService,
		runner:          runner,
		eventBus:        eventBus,
		scheduler:       scheduler,
		validator:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req WorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Create(c.Context(), req.toModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	h.reloadScheduler(c)

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req WorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Update(c.Context(), id, req.toModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	h.reloadScheduler(c)

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.workflowService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	h.reloadScheduler(c)

	return c.SendStatus(fiber.StatusNoContent)
}

// RunWorkflow starts a manual run and waits for it: the response carries
// the completed run record, including per-node results.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	req := RunRequest{}
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	run, err := h.runner.Execute(c.Context(), workflow, engine.Options{
		Trigger:   models.TriggerManual,
		DryRun:    req.DryRun,
		EventData: req.EventData,
	})
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(run)
}

func (h *APIHandlers) GetWorkflowRuns(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if _, err := h.workflowService.FetchByID(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	runs, err := h.runService.ListByWorkflow(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"runs": runs})
}

func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	run, err := h.runService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(run)
}

// EmitEvent publishes an event. Dispatch is fire-and-forget: the response
// carries the recorded event, never run outcomes.
func (h *APIHandlers) EmitEvent(c fiber.Ctx) error {
	var req EmitEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	event, err := h.eventBus.Emit(c.Context(), req.Type, req.Source, req.Data, req.Project)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(event)
}

func (h *APIHandlers) GetEvents(c fiber.Ctx) error {
	limit := 50

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return badRequest(c, "Invalid limit")
		}

		limit = parsed
	}

	events := h.eventBus.RecentEvents(c.Query("type"), limit)

	return c.JSON(fiber.Map{"events": events})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, ok := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// reloadScheduler refreshes cron entries after a workflow change. A reload
// failure does not fail the request; the write already happened.
func (h *APIHandlers) reloadScheduler(c fiber.Ctx) {
	if h.scheduler == nil {
		return
	}

	_ = h.scheduler.Reload(c.Context())
}
