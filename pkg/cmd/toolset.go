package cmd

import "github.com/graphflow/graphflow/pkg/tools"

// ToolsetConfig names the external collaborators the side-effecting node
// kinds shell out to.
type ToolsetConfig struct {
	Shell          string
	LLMCommand     string
	TaskCommand    string
	MessageCommand string
	BrowserCommand string
	SpawnEndpoint  string
}

// NewToolset builds the production toolset from CLI configuration.
func NewToolset(cfg ToolsetConfig) *tools.Toolset {
	return &tools.Toolset{
		Shell:     &tools.ShellRunner{Shell: cfg.Shell},
		LLM:       &tools.CLILLMClient{Command: cfg.LLMCommand},
		Tasks:     &tools.CLITaskClient{Command: cfg.TaskCommand},
		Messenger: &tools.CLIMessengerClient{Command: cfg.MessageCommand},
		Spawner:   &tools.HTTPAgentSpawner{Endpoint: cfg.SpawnEndpoint},
		Browser:   &tools.CLIBrowserClient{Command: cfg.BrowserCommand},
	}
}
