package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dhabedank/strategem/internal/core"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicAPIAdapter uses the Anthropic API directly.
type AnthropicAPIAdapter struct {
	client      anthropic.Client
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// NewAnthropicAPIAdapter creates an Anthropic API adapter.
func NewAnthropicAPIAdapter(config Config) (*AnthropicAPIAdapter, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}
	if config.BaseURL != "" && config.BaseURL != DefaultOpenRouterURL {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	model := config.Model
	if model == "" || strings.Contains(model, "/") {
		model = defaultAnthropicModel
	}

	return &AnthropicAPIAdapter{
		client:      anthropic.NewClient(opts...),
		apiKey:      apiKey,
		model:       model,
		maxTokens:   config.maxTokens(),
		temperature: config.Temperature,
	}, nil
}

func (a *AnthropicAPIAdapter) Name() string {
	return "anthropic-api"
}

func (a *AnthropicAPIAdapter) IsAvailable() bool {
	return a.apiKey != ""
}

func (a *AnthropicAPIAdapter) Complete(ctx context.Context, req core.Request) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   int64(a.maxTokens),
		Temperature: anthropic.Float(a.temperature),
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var output strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			output.WriteString(block.Text)
		}
	}
	if output.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return output.String(), nil
}
