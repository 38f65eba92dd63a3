package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ShellRunner runs commands through a shell so node configs can use pipes
// and quoting the way they would in a terminal.
type ShellRunner struct {
	Shell string // defaults to /bin/sh
}

func (r *ShellRunner) Run(ctx context.Context, dir, command string) (string, error) {
	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	return runCommand(ctx, dir, shell, "-c", command)
}

// CLILLMClient invokes the LLM CLI with the prompt on stdin. Model
// selection is passed as a flag when configured.
type CLILLMClient struct {
	Command string // e.g. "llm"
	Args    []string
}

func (c *CLILLMClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	args := append([]string{}, c.Args...)
	if model != "" {
		args = append(args, "--model", model)
	}

	cmd := commandWithStdin(ctx, prompt, c.Command, args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("%s: %w: %s", c.Command, err, detail)
		}

		return "", fmt.Errorf("%s: %w", c.Command, err)
	}

	return stdout.String(), nil
}

// CLITaskClient shells out to the task CLI.
type CLITaskClient struct {
	Command string // e.g. "tasks"
}

func (c *CLITaskClient) Create(ctx context.Context, title, description, taskType, priority string, labels []string) (string, error) {
	args := []string{"create", title}

	if description != "" {
		args = append(args, "--description", description)
	}

	if taskType != "" {
		args = append(args, "--type", taskType)
	}

	if priority != "" {
		args = append(args, "--priority", priority)
	}

	for _, label := range labels {
		args = append(args, "--label", label)
	}

	return runCommand(ctx, "", c.Command, args...)
}

// CLIMessengerClient shells out to the messaging CLI.
type CLIMessengerClient struct {
	Command string // e.g. "msg"
}

func (c *CLIMessengerClient) Send(ctx context.Context, recipient, body, thread string) (string, error) {
	args := []string{"send", "--to", recipient}

	if thread != "" {
		args = append(args, "--thread", thread)
	}

	args = append(args, body)

	return runCommand(ctx, "", c.Command, args...)
}

// HTTPAgentSpawner posts spawn requests to the orchestration endpoint.
type HTTPAgentSpawner struct {
	Endpoint string
	Client   *http.Client
}

func (s *HTTPAgentSpawner) Spawn(ctx context.Context, req SpawnRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding spawn request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building spawn request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("spawn request failed: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return fmt.Errorf("spawn endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}

// CLIBrowserClient shells out to the browser automation CLI, one
// subcommand per action.
type CLIBrowserClient struct {
	Command string // e.g. "browserctl"
}

func (c *CLIBrowserClient) Do(ctx context.Context, action string, args map[string]string) (string, error) {
	argv := []string{action}

	// Stable flag order keeps invocations reproducible in logs.
	for _, flag := range []string{"url", "code", "selector", "timeout"} {
		if v, ok := args[flag]; ok && v != "" {
			argv = append(argv, "--"+flag, v)
		}
	}

	return runCommand(ctx, "", c.Command, argv...)
}
