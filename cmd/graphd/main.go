package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/graphflow/graphflow/pkg/cmd"
	"github.com/graphflow/graphflow/pkg/log"
	"github.com/graphflow/graphflow/pkg/otelhelper"
)

const defaultPort = 9080

func main() {
	logger := log.WithModule("graphd")

	app := &cli.Command{
		Name:                  "graphd",
		Usage:                 "Workflow engine daemon: REST API, cron scheduler, and event bus",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Storage location: a directory path, file://path, or postgres:// URL",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OTLP traces for workflow runs",
				Sources: cli.EnvVars("GRAPHFLOW_TRACING"),
			},
			&cli.StringFlag{
				Name:    "shell",
				Usage:   "Shell used by run_command nodes",
				Value:   "/bin/sh",
				Sources: cli.EnvVars("GRAPHFLOW_SHELL"),
			},
			&cli.StringFlag{
				Name:    "llm-command",
				Usage:   "CLI invoked by llm nodes",
				Value:   "llm",
				Sources: cli.EnvVars("GRAPHFLOW_LLM_COMMAND"),
			},
			&cli.StringFlag{
				Name:    "task-command",
				Usage:   "CLI invoked by create_task nodes",
				Value:   "tasks",
				Sources: cli.EnvVars("GRAPHFLOW_TASK_COMMAND"),
			},
			&cli.StringFlag{
				Name:    "message-command",
				Usage:   "CLI invoked by send_message nodes",
				Value:   "msg",
				Sources: cli.EnvVars("GRAPHFLOW_MESSAGE_COMMAND"),
			},
			&cli.StringFlag{
				Name:    "browser-command",
				Usage:   "CLI invoked by browser nodes",
				Value:   "browserctl",
				Sources: cli.EnvVars("GRAPHFLOW_BROWSER_COMMAND"),
			},
			&cli.StringFlag{
				Name:    "spawn-endpoint",
				Usage:   "HTTP endpoint spawn_agent nodes post to",
				Value:   "http://localhost:9700/agents",
				Sources: cli.EnvVars("GRAPHFLOW_SPAWN_ENDPOINT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing graphd")

			if command.Bool("tracing") {
				if _, err := otelhelper.Setup(ctx, "graphd"); err != nil {
					logger.WarnContext(ctx, "Tracing setup failed, continuing without it", "error", err)
				}
			}

			store, err := cmd.NewPersistence(command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			toolset := cmd.NewToolset(cmd.ToolsetConfig{
				Shell:          command.String("shell"),
				LLMCommand:     command.String("llm-command"),
				TaskCommand:    command.String("task-command"),
				MessageCommand: command.String("message-command"),
				BrowserCommand: command.String("browser-command"),
				SpawnEndpoint:  command.String("spawn-endpoint"),
			})

			server := NewServer(logger, store, toolset)

			return server.Start(ctx, command.Int("port"))
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error("graphd exited with error", "error", err)
		os.Exit(1)
	}
}
