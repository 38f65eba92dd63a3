// Package main provides the graphd server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/graphflow/graphflow/pkg/bus"
	"github.com/graphflow/graphflow/pkg/engine"
	"github.com/graphflow/graphflow/pkg/executors"
	"github.com/graphflow/graphflow/pkg/expression"
	"github.com/graphflow/graphflow/pkg/persistence"
	"github.com/graphflow/graphflow/pkg/scheduler"
	"github.com/graphflow/graphflow/pkg/services"
	"github.com/graphflow/graphflow/pkg/tools"
	"github.com/graphflow/graphflow/pkg/web"
)

// Server assembles the engine, event bus, scheduler, and REST API into one
// process.
type Server struct {
	logger    *slog.Logger
	store     persistence.Persistence
	runner    *engine.Engine
	eventBus  *bus.Bus
	scheduler *scheduler.Scheduler
}

func NewServer(logger *slog.Logger, store persistence.Persistence, toolset *tools.Toolset) *Server {
	evaluator := expression.New()
	runner := engine.New(logger, store, executors.NewSet(toolset, evaluator))

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 1000},
		watermill.NewSlogLogger(logger),
	)

	return &Server{
		logger:    logger,
		store:     store,
		runner:    runner,
		eventBus:  bus.New(logger, store, runner, evaluator, pubSub, pubSub),
		scheduler: scheduler.New(logger, store, runner),
	}
}

func (s *Server) App() *fiber.App {
	handlers := web.NewAPIHandlers(
		services.NewWorkflow(s.store),
		services.NewRun(s.store),
		s.runner,
		s.eventBus,
		s.scheduler,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("graphflow")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/run", handlers.RunWorkflow)
	w.Get("/:id/runs", handlers.GetWorkflowRuns)

	app.Get("/runs/:id", handlers.GetRun)
	app.Post("/events", handlers.EmitEvent)
	app.Get("/events", handlers.GetEvents)
	app.Get("/health", handlers.HealthCheck)

	return app
}

// Start brings up the event bus subscriber, the cron scheduler, and the
// HTTP listener. Blocks until the listener stops.
func (s *Server) Start(ctx context.Context, port int) error {
	if err := s.eventBus.Start(ctx); err != nil {
		return err
	}

	defer func() {
		if err := s.eventBus.Close(); err != nil {
			s.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	defer func() {
		if err := s.scheduler.Stop(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to stop scheduler", "error", err)
		}
	}()

	s.logger.InfoContext(ctx, "Starting API server", "port", port)

	return s.App().Listen(":" + strconv.Itoa(port))
}
