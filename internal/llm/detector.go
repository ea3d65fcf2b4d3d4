package llm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Provider names accepted by New.
const (
	ProviderAuto       = "auto"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic-api"
	ProviderClaudeCLI  = "claude-cli"
	ProviderCodexCLI   = "codex-cli"
	ProviderGemini     = "gemini"
)

// Providers lists every selectable provider.
var Providers = []string{ProviderAuto, ProviderOpenRouter, ProviderAnthropic, ProviderClaudeCLI, ProviderCodexCLI, ProviderGemini}

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string // Model identifier (e.g., "openai/gpt-4o-mini")
	Name        string // Human-readable name
	Description string // Brief description
	Provider    string // Provider name (e.g., "openrouter", "anthropic")
}

var openRouterModels = []ModelInfo{
	{ID: "openai/gpt-4o-mini", Name: "GPT-4o Mini", Description: "Low cost, stable structured output ($0.15/$0.60 per MTok)", Provider: "openrouter"},
	{ID: "openai/gpt-4o", Name: "GPT-4o", Description: "Stronger reasoning ($2.50/$10 per MTok)", Provider: "openrouter"},
	{ID: "anthropic/claude-sonnet-4.5", Name: "Claude Sonnet 4.5", Description: "Anthropic via OpenRouter ($3/$15 per MTok)", Provider: "openrouter"},
	{ID: "google/gemini-2.5-flash", Name: "Gemini 2.5 Flash", Description: "Fast and cheap ($0.30/$2.50 per MTok)", Provider: "openrouter"},
	{ID: "meta-llama/llama-3.3-70b-instruct", Name: "Llama 3.3 70B", Description: "Open weights ($0.13/$0.40 per MTok)", Provider: "openrouter"},
}

// claudeModels lists Claude models available via CLI or API.
var claudeModels = []ModelInfo{
	{ID: "claude-opus-4-5-20251101", Name: "Claude Opus 4.5", Description: "Premium model, maximum intelligence ($5/$25 per MTok)", Provider: "anthropic"},
	{ID: "claude-sonnet-4-5-20250929", Name: "Claude Sonnet 4.5", Description: "Best balance of speed and capability ($3/$15 per MTok)", Provider: "anthropic"},
	{ID: "claude-haiku-4-5-20251001", Name: "Claude Haiku 4.5", Description: "Fastest, most cost-effective ($1/$5 per MTok)", Provider: "anthropic"},
}

// codexModels lists OpenAI models available via the Codex CLI.
var codexModels = []ModelInfo{
	{ID: "o3", Name: "O3", Description: "Most capable reasoning model", Provider: "openai"},
	{ID: "o3-mini", Name: "O3 Mini", Description: "Fast reasoning model", Provider: "openai"},
	{ID: "gpt-4o", Name: "GPT-4o", Description: "Fast multimodal model", Provider: "openai"},
}

var geminiModels = []ModelInfo{
	{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Description: "Deep reasoning ($1.25/$10 per MTok)", Provider: "gemini"},
	{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Description: "Fast and cheap ($0.30/$2.50 per MTok)", Provider: "gemini"},
}

// AvailableModels returns models grouped by provider for the backends
// that look usable on this machine.
func AvailableModels() map[string][]ModelInfo {
	result := make(map[string][]ModelInfo)

	if os.Getenv("OPENROUTER_API_KEY") != "" {
		result[ProviderOpenRouter] = openRouterModels
	}
	if _, err := exec.LookPath("claude"); err == nil {
		result[ProviderClaudeCLI] = claudeModels
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		result[ProviderAnthropic] = claudeModels
	}
	if _, err := exec.LookPath("codex"); err == nil {
		result[ProviderCodexCLI] = codexModels
	}
	if os.Getenv("GEMINI_API_KEY") != "" {
		result[ProviderGemini] = geminiModels
	}

	return result
}

// ModelsFor returns the known models of one provider, available or not.
func ModelsFor(provider string) []ModelInfo {
	switch provider {
	case ProviderOpenRouter:
		return openRouterModels
	case ProviderAnthropic, ProviderClaudeCLI:
		return claudeModels
	case ProviderCodexCLI:
		return codexModels
	case ProviderGemini:
		return geminiModels
	}
	return nil
}

// New builds the adapter named by config.Provider.
func New(ctx context.Context, config Config) (Adapter, error) {
	switch config.Provider {
	case "", ProviderAuto:
		return DetectBestAdapter(ctx, config)
	case ProviderOpenRouter:
		return NewOpenRouterAdapter(config)
	case ProviderAnthropic:
		return NewAnthropicAPIAdapter(config)
	case ProviderGemini:
		return NewGeminiAdapter(ctx, config)
	case ProviderClaudeCLI:
		a := NewClaudeCLIAdapter(config)
		if !a.IsAvailable() {
			return nil, fmt.Errorf("%w: claude CLI not installed", ErrNoAdapter)
		}
		return a, nil
	case ProviderCodexCLI:
		a := NewCodexCLIAdapter(config)
		if !a.IsAvailable() {
			return nil, fmt.Errorf("%w: codex CLI not installed", ErrNoAdapter)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", config.Provider)
	}
}

// DetectBestAdapter finds the best available LLM adapter.
// Priority: OpenRouter > Claude CLI > Codex CLI > Anthropic API > Gemini
func DetectBestAdapter(ctx context.Context, config Config) (Adapter, error) {
	if openrouter, err := NewOpenRouterAdapter(config); err == nil {
		return openrouter, nil
	}

	if config.PreferCLI {
		claude := NewClaudeCLIAdapter(config)
		if claude.IsAvailable() {
			return claude, nil
		}

		codex := NewCodexCLIAdapter(config)
		if codex.IsAvailable() {
			return codex, nil
		}
	}

	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		if anthropic, err := NewAnthropicAPIAdapter(config); err == nil {
			return anthropic, nil
		}
	}

	if os.Getenv("GEMINI_API_KEY") != "" {
		if gemini, err := NewGeminiAdapter(ctx, config); err == nil {
			return gemini, nil
		}
	}

	return nil, fmt.Errorf("%w: set OPENROUTER_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY, or install Claude Code or Codex", ErrNoAdapter)
}

// ListAvailableAdapters returns all adapters that could be used.
func ListAvailableAdapters(config Config) []string {
	available := []string{}

	if a, err := NewOpenRouterAdapter(config); err == nil && a.IsAvailable() {
		available = append(available, ProviderOpenRouter)
	}
	if NewClaudeCLIAdapter(config).IsAvailable() {
		available = append(available, ProviderClaudeCLI)
	}
	if NewCodexCLIAdapter(config).IsAvailable() {
		available = append(available, ProviderCodexCLI)
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		available = append(available, ProviderAnthropic)
	}
	if os.Getenv("GEMINI_API_KEY") != "" {
		available = append(available, ProviderGemini)
	}

	return available
}
