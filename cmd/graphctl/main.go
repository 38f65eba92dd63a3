// Package main provides graphctl, a command line client that runs stored
// workflows directly against the storage backend, without a daemon.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/graphflow/graphflow/pkg/cmd"
	"github.com/graphflow/graphflow/pkg/engine"
	"github.com/graphflow/graphflow/pkg/executors"
	"github.com/graphflow/graphflow/pkg/expression"
	"github.com/graphflow/graphflow/pkg/log"
	"github.com/graphflow/graphflow/pkg/models"
)

func main() {
	logger := log.WithModule("graphctl")

	databaseFlag := &cli.StringFlag{
		Name:    "database-url",
		Usage:   "Storage location: a directory path, file://path, or postgres:// URL",
		Value:   "file://./data",
		Sources: cli.EnvVars("DATABASE_URL"),
	}

	logLevelFlag := &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Value:   "warn",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}

	app := &cli.Command{
		Name:                  "graphctl",
		Usage:                 "Run and inspect workflows from the command line",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Execute a stored workflow once and print the run record",
				ArgsUsage: "<workflow-id>",
				Flags: []cli.Flag{
					databaseFlag,
					logLevelFlag,
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Describe side effects instead of performing them",
					},
					&cli.StringFlag{
						Name:  "event-data",
						Usage: "JSON object passed to the trigger node as event data",
					},
					&cli.StringFlag{
						Name:    "shell",
						Usage:   "Shell used by run_command nodes",
						Value:   "/bin/sh",
						Sources: cli.EnvVars("GRAPHFLOW_SHELL"),
					},
					&cli.StringFlag{
						Name:    "llm-command",
						Value:   "llm",
						Sources: cli.EnvVars("GRAPHFLOW_LLM_COMMAND"),
					},
					&cli.StringFlag{
						Name:    "task-command",
						Value:   "tasks",
						Sources: cli.EnvVars("GRAPHFLOW_TASK_COMMAND"),
					},
					&cli.StringFlag{
						Name:    "message-command",
						Value:   "msg",
						Sources: cli.EnvVars("GRAPHFLOW_MESSAGE_COMMAND"),
					},
					&cli.StringFlag{
						Name:    "browser-command",
						Value:   "browserctl",
						Sources: cli.EnvVars("GRAPHFLOW_BROWSER_COMMAND"),
					},
					&cli.StringFlag{
						Name:    "spawn-endpoint",
						Value:   "http://localhost:9700/agents",
						Sources: cli.EnvVars("GRAPHFLOW_SPAWN_ENDPOINT"),
					},
				},
				Action: runAction,
			},
			{
				Name:  "list",
				Usage: "List stored workflows",
				Flags: []cli.Flag{databaseFlag, logLevelFlag},
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					store, err := cmd.NewPersistence(command.String("database-url"))
					if err != nil {
						return err
					}
					defer func() { _ = store.Close(ctx) }()

					workflows, err := store.WorkflowRepository().List(ctx)
					if err != nil {
						return err
					}

					for _, workflow := range workflows {
						state := "disabled"
						if workflow.Enabled {
							state = "enabled"
						}

						fmt.Printf("%s\t%s\t%s\t%d nodes\n", workflow.ID, workflow.Name, state, len(workflow.Nodes))
					}

					return nil
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error("graphctl failed", "error", err)
		os.Exit(1)
	}
}

func runAction(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	workflowID := command.Args().First()
	if workflowID == "" {
		return fmt.Errorf("workflow id is required")
	}

	var eventData map[string]any

	if raw := command.String("event-data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &eventData); err != nil {
			return fmt.Errorf("invalid --event-data: %w", err)
		}
	}

	store, err := cmd.NewPersistence(command.String("database-url"))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(ctx) }()

	workflow, err := store.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	toolset := cmd.NewToolset(cmd.ToolsetConfig{
		Shell:          command.String("shell"),
		LLMCommand:     command.String("llm-command"),
		TaskCommand:    command.String("task-command"),
		MessageCommand: command.String("message-command"),
		BrowserCommand: command.String("browser-command"),
		SpawnEndpoint:  command.String("spawn-endpoint"),
	})

	runner := engine.New(log.WithModule("graphctl"), store, executors.NewSet(toolset, expression.New()))

	run, err := runner.Execute(ctx, workflow, engine.Options{
		Trigger:   models.TriggerManual,
		DryRun:    command.Bool("dry-run"),
		EventData: eventData,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	if run.Status == models.RunStatusFailed {
		return fmt.Errorf("run %s failed", run.ID)
	}

	return nil
}
