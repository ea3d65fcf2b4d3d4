package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/dhabedank/strategem/internal/core"
)

// Adapter is the interface all LLM adapters must implement.
// Every Adapter satisfies core.Transport.
type Adapter interface {
	// Name returns the adapter identifier for logging.
	Name() string

	// IsAvailable checks if this adapter can be used (CLI installed, API key set, etc.)
	IsAvailable() bool

	// Complete sends one request and returns the raw model text.
	Complete(ctx context.Context, req core.Request) (string, error)
}

// Config holds configuration for LLM adapters.
type Config struct {
	// Provider selects a backend by name. Empty or "auto" detects one.
	Provider string

	// PreferCLI prefers CLI tools (claude, codex) over API when available.
	PreferCLI bool

	// Model specifies which model to use (optional, adapter chooses default).
	Model string

	// APIKey for direct API access (optional if CLI is used).
	APIKey string

	// BaseURL overrides the OpenRouter endpoint.
	BaseURL string

	// Temperature for sampling. Low values keep framework output stable.
	Temperature float64

	// MaxTokens limits response length.
	MaxTokens int

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// HTTPClient replaces the default client (tests).
	HTTPClient *http.Client
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderAuto,
		PreferCLI:   true, // Use CLI tools when available (already authenticated)
		BaseURL:     DefaultOpenRouterURL,
		Temperature: 0.2,
		MaxTokens:   8000,
		Timeout:     120 * time.Second,
	}
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return 8000
	}
	return c.MaxTokens
}
