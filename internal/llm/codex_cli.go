package llm

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dhabedank/strategem/internal/core"
)

// CodexCLIAdapter uses the Codex CLI for generation.
type CodexCLIAdapter struct {
	model string
}

// NewCodexCLIAdapter creates a Codex CLI adapter.
func NewCodexCLIAdapter(config Config) *CodexCLIAdapter {
	model := config.Model
	if model == "" || strings.HasPrefix(model, "claude") || strings.Contains(model, "/") {
		model = "o3"
	}
	return &CodexCLIAdapter{model: model}
}

func (a *CodexCLIAdapter) Name() string {
	return "codex-cli"
}

// IsAvailable checks if the codex CLI is installed.
func (a *CodexCLIAdapter) IsAvailable() bool {
	_, err := exec.LookPath("codex")
	return err == nil
}

func (a *CodexCLIAdapter) Complete(ctx context.Context, req core.Request) (string, error) {
	// Codex has no separate system prompt flag.
	combined := fmt.Sprintf("SYSTEM INSTRUCTIONS:\n%s\n\nUSER REQUEST:\n%s", req.SystemPrompt, req.UserPrompt)

	cmd := exec.CommandContext(ctx, "codex",
		"--model", a.model,
		"--quiet",
	)
	cmd.Stdin = strings.NewReader(combined)

	return runCLI(cmd, "codex")
}
