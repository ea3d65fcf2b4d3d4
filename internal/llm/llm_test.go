package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/strategem/internal/core"
	"github.com/dhabedank/strategem/internal/llm"
)

var testRequest = core.Request{
	Framework:    "porter",
	SystemPrompt: "you are an analyst",
	UserPrompt:   "analyze this",
}

func TestDefaultConfig(t *testing.T) {
	config := llm.DefaultConfig()

	assert.Equal(t, llm.ProviderAuto, config.Provider)
	assert.True(t, config.PreferCLI)
	assert.Equal(t, 8000, config.MaxTokens)
	assert.Equal(t, llm.DefaultOpenRouterURL, config.BaseURL)
	assert.InDelta(t, 0.2, config.Temperature, 1e-9)
}

func TestOpenRouterAdapter_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"a\":1}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	adapter, err := llm.NewOpenRouterAdapter(llm.Config{
		APIKey:      "sk-test",
		BaseURL:     srv.URL + "/",
		Model:       "openai/gpt-4o",
		Temperature: 0.3,
		MaxTokens:   1234,
	})
	require.NoError(t, err)

	text, err := adapter.Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)

	assert.Equal(t, "openai/gpt-4o", got["model"])
	assert.InDelta(t, 0.3, got["temperature"], 1e-9)
	assert.InDelta(t, 1234, got["max_tokens"], 1e-9)
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "analyze this", messages[1].(map[string]any)["content"])
}

func TestOpenRouterAdapter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "boom",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "status 500")
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			header: map[string]string{"Retry-After": "7"},
			body:   "slow down",
			check: func(t *testing.T, err error) {
				var rl *llm.RateLimitError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, 7*time.Second, rl.RetryAfter)
				assert.Equal(t, "openrouter", rl.Provider)
			},
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, llm.ErrEmptyResponse)
			},
		},
		{
			name:   "error payload",
			status: http.StatusOK,
			body:   `{"error":{"message":"model not found"}}`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "model not found")
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "unexpected API response format")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			adapter, err := llm.NewOpenRouterAdapter(llm.Config{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = adapter.Complete(context.Background(), testRequest)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenRouterAdapter_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	adapter, err := llm.NewOpenRouterAdapter(llm.Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = adapter.Complete(ctx, testRequest)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewOpenRouterAdapter_MissingKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	_, err := llm.NewOpenRouterAdapter(llm.Config{})
	assert.Error(t, err)
}

func TestAnthropicAPIAdapter_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5-20250929",
			"content": [{"type": "text", "text": "Rivalry: intense"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	adapter, err := llm.NewAnthropicAPIAdapter(llm.Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "anthropic-api", adapter.Name())

	text, err := adapter.Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Rivalry: intense", text)
}

func TestAdapterNames(t *testing.T) {
	assert.Equal(t, "claude-cli", llm.NewClaudeCLIAdapter(llm.Config{}).Name())
	assert.Equal(t, "codex-cli", llm.NewCodexCLIAdapter(llm.Config{}).Name())
}

func TestNew_Providers(t *testing.T) {
	ctx := context.Background()

	adapter, err := llm.New(ctx, llm.Config{Provider: llm.ProviderOpenRouter, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openrouter", adapter.Name())

	adapter, err = llm.New(ctx, llm.Config{Provider: llm.ProviderGemini, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", adapter.Name())

	_, err = llm.New(ctx, llm.Config{Provider: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestDetectBestAdapter_PrefersOpenRouter(t *testing.T) {
	adapter, err := llm.DetectBestAdapter(context.Background(), llm.Config{APIKey: "k", PreferCLI: true})
	require.NoError(t, err)
	assert.Equal(t, "openrouter", adapter.Name())
}

func TestListAvailableAdapters(t *testing.T) {
	adapters := llm.ListAvailableAdapters(llm.DefaultConfig())
	assert.NotNil(t, adapters)
}

func TestModelsFor(t *testing.T) {
	assert.NotEmpty(t, llm.ModelsFor(llm.ProviderOpenRouter))
	assert.NotEmpty(t, llm.ModelsFor(llm.ProviderClaudeCLI))
	assert.Nil(t, llm.ModelsFor("nope"))
}

func TestNewRateLimitError_Default(t *testing.T) {
	err := llm.NewRateLimitError("x", errors.New("429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "x rate limited")
}
