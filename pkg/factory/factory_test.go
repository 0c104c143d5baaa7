package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-toolcall/pkg/llm"
)

func TestCreateClient(t *testing.T) {
	f := New()

	t.Run("missing_model", func(t *testing.T) {
		_, err := f.CreateClient(llm.ClientConfig{Provider: "mock"})
		require.Error(t, err)
		llmErr, ok := err.(*llm.Error)
		require.True(t, ok)
		assert.Equal(t, "missing_model", llmErr.Code)
	})

	t.Run("unsupported_provider", func(t *testing.T) {
		_, err := f.CreateClient(llm.ClientConfig{Provider: "nope", Model: "m"})
		require.Error(t, err)
		llmErr, ok := err.(*llm.Error)
		require.True(t, ok)
		assert.Equal(t, "unsupported_provider", llmErr.Code)
	})

	t.Run("mock_provider", func(t *testing.T) {
		client, err := f.CreateClient(llm.ClientConfig{Provider: "mock", Model: "test-model"})
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, "test-model", client.GetModelInfo().Name)
	})

	t.Run("provider_names_are_case_insensitive", func(t *testing.T) {
		client, err := f.CreateClient(llm.ClientConfig{Provider: "MOCK", Model: "test-model"})
		require.NoError(t, err)
		defer client.Close()
	})
}

func TestCreateClientTextToolCalls(t *testing.T) {
	f := New()

	// The mock provider reports SupportsTools=false, so the default mode
	// wraps it with text tool-call recovery.
	t.Run("auto_wraps_clients_without_tool_support", func(t *testing.T) {
		client, err := f.CreateClient(llm.ClientConfig{Provider: "mock", Model: "test-model"})
		require.NoError(t, err)
		defer client.Close()

		assert.True(t, client.GetModelInfo().SupportsTools)
	})

	t.Run("off_leaves_client_unwrapped", func(t *testing.T) {
		client, err := f.CreateClient(llm.ClientConfig{
			Provider:      "mock",
			Model:         "test-model",
			TextToolCalls: llm.TextToolCallsOff,
		})
		require.NoError(t, err)
		defer client.Close()

		assert.False(t, client.GetModelInfo().SupportsTools)
	})

	t.Run("wrapped_client_recovers_tool_calls", func(t *testing.T) {
		client, err := f.CreateClient(llm.ClientConfig{Provider: "mock", Model: "test-model"})
		require.NoError(t, err)
		defer client.Close()

		req := llm.ChatRequest{
			Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "what is the weather?")},
			Tools: []llm.Tool{llm.NewTool("get_weather", "Report the weather", map[string]any{
				"type": "object",
			})},
		}

		resp, err := client.ChatCompletion(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, resp.Choices, 1)
		// The default mock response carries no tool call text
		assert.Empty(t, resp.Choices[0].Message.ToolCalls)
	})
}

func TestListProviders(t *testing.T) {
	names := ListProviders()
	assert.Contains(t, names, "openai")
	assert.Contains(t, names, "deepseek")
	assert.Contains(t, names, "openrouter")
	assert.Contains(t, names, "gemini")
	assert.Contains(t, names, "bedrock")
	assert.Contains(t, names, "ollama")
	assert.Contains(t, names, "mock")
}
