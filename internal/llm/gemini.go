package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/dhabedank/strategem/internal/core"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiAdapter uses Google's Gemini API.
type GeminiAdapter struct {
	client      *genai.Client
	apiKey      string
	model       string
	temperature float32
	maxTokens   int32
}

// NewGeminiAdapter creates a Gemini adapter.
func NewGeminiAdapter(ctx context.Context, config Config) (*GeminiAdapter, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}
	if config.BaseURL != "" && config.BaseURL != DefaultOpenRouterURL {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := config.Model
	if model == "" || !strings.HasPrefix(model, "gemini") {
		model = defaultGeminiModel
	}

	return &GeminiAdapter{
		client:      client,
		apiKey:      apiKey,
		model:       model,
		temperature: float32(config.Temperature),
		maxTokens:   int32(config.maxTokens()),
	}, nil
}

func (a *GeminiAdapter) Name() string {
	return "gemini"
}

func (a *GeminiAdapter) IsAvailable() bool {
	return a.apiKey != ""
}

func (a *GeminiAdapter) Complete(ctx context.Context, req core.Request) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(req.UserPrompt, genai.RoleUser),
	}
	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(a.temperature),
		MaxOutputTokens:   a.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
