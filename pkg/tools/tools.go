// Package tools defines the contracts for the external collaborators node
// executors call out to, plus their real CLI/HTTP-backed implementations.
//
// Every collaborator is a narrow boundary: a subprocess whose stdout is the
// payload, or an HTTP endpoint whose status code decides success. A non-zero
// exit or non-2xx response is the caller's error; the engine records it on
// the node and moves on.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
)

// CommandRunner executes a shell command in a working directory and returns
// captured stdout.
type CommandRunner interface {
	Run(ctx context.Context, dir, command string) (string, error)
}

// LLMClient sends a prompt to the LLM CLI and returns its raw text output.
type LLMClient interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// TaskClient creates a task through the task CLI and returns its stdout.
type TaskClient interface {
	Create(ctx context.Context, title, description, taskType, priority string, labels []string) (string, error)
}

// MessengerClient delivers a message to a recipient under a thread tag.
type MessengerClient interface {
	Send(ctx context.Context, recipient, body, thread string) (string, error)
}

// SpawnRequest is the JSON body posted to the agent orchestration endpoint.
type SpawnRequest struct {
	TaskID  string `json:"task_id,omitempty"`
	Title   string `json:"title,omitempty"`
	Model   string `json:"model,omitempty"`
	Project string `json:"project,omitempty"`
}

// AgentSpawner asks the orchestration service to start an agent.
type AgentSpawner interface {
	Spawn(ctx context.Context, req SpawnRequest) error
}

// BrowserClient dispatches one browser automation sub-action. Args carries
// the sub-action's flag values (url, code, selector, timeout).
type BrowserClient interface {
	Do(ctx context.Context, action string, args map[string]string) (string, error)
}

// Toolset bundles every collaborator the executors need. Tests swap in
// fakes; cmd wiring fills it with the CLI/HTTP clients below.
type Toolset struct {
	Shell     CommandRunner
	LLM       LLMClient
	Tasks     TaskClient
	Messenger MessengerClient
	Spawner   AgentSpawner
	Browser   BrowserClient
}

// runCommand executes argv, captures stdout, and folds stderr into the
// error on failure.
func runCommand(ctx context.Context, dir string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, detail)
		}

		return "", fmt.Errorf("%s: %w", name, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func commandWithStdin(ctx context.Context, stdin, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)

	return cmd
}

func statusOK(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
