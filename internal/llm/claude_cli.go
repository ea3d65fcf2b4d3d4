package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dhabedank/strategem/internal/core"
)

// ClaudeCLIAdapter uses the Claude Code CLI for generation.
// This is preferred because users already have it authenticated.
type ClaudeCLIAdapter struct {
	model  string
	binary string
}

// NewClaudeCLIAdapter creates a Claude CLI adapter.
func NewClaudeCLIAdapter(config Config) *ClaudeCLIAdapter {
	model := config.Model
	if model == "" || strings.Contains(model, "/") {
		model = defaultAnthropicModel
	}
	return &ClaudeCLIAdapter{model: model, binary: "claude"}
}

func (a *ClaudeCLIAdapter) Name() string {
	return "claude-cli"
}

// IsAvailable checks if the claude CLI is installed.
func (a *ClaudeCLIAdapter) IsAvailable() bool {
	_, err := exec.LookPath(a.binary)
	return err == nil
}

func (a *ClaudeCLIAdapter) Complete(ctx context.Context, req core.Request) (string, error) {
	systemFile, err := os.CreateTemp("", "strategem-system-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create system prompt file: %w", err)
	}
	defer func() { _ = os.Remove(systemFile.Name()) }()

	if _, err := systemFile.WriteString(req.SystemPrompt); err != nil {
		_ = systemFile.Close()
		return "", fmt.Errorf("failed to write system prompt: %w", err)
	}
	if err := systemFile.Close(); err != nil {
		return "", fmt.Errorf("failed to write system prompt: %w", err)
	}

	// claude --model <model> --system-prompt-file <file> --print, user prompt on stdin
	cmd := exec.CommandContext(ctx, a.binary,
		"--model", a.model,
		"--system-prompt-file", systemFile.Name(),
		"--print",
		"--output-format", "text",
	)
	cmd.Stdin = strings.NewReader(req.UserPrompt)

	return runCLI(cmd, "claude")
}

// runCLI runs a prepared command and returns its stdout.
func runCLI(cmd *exec.Cmd, name string) (string, error) {
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%s CLI failed: %s", name, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("%s CLI failed: %w", name, err)
	}
	text := strings.TrimSpace(string(output))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
