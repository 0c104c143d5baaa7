package openrouter

import (
	"testing"

	openrouter "github.com/revrost/go-openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-toolcall/pkg/llm"
)

func TestNewClient(t *testing.T) {
	t.Run("missing_api_key_rejected", func(t *testing.T) {
		_, err := NewClient(llm.ClientConfig{Provider: "openrouter", Model: "qwen/qwen3-8b"})
		require.Error(t, err)
		llmErr, ok := err.(*llm.Error)
		require.True(t, ok)
		assert.Equal(t, "missing_api_key", llmErr.Code)
	})

	t.Run("valid_config", func(t *testing.T) {
		client, err := NewClient(llm.ClientConfig{
			Provider: "openrouter",
			Model:    "qwen/qwen3-8b",
			APIKey:   "test-key",
			Extra: map[string]string{
				"site_url": "https://example.com",
				"app_name": "toolcall-tests",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "qwen/qwen3-8b", client.model)
		assert.Equal(t, "openrouter", client.provider)
	})
}

func TestConvertRequest(t *testing.T) {
	client := &Client{model: "qwen/qwen3-8b", provider: "openrouter"}

	req := client.convertRequest(llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "Weather in Madrid?"),
		},
		Tools: []llm.Tool{
			llm.NewTool("get_weather", "Current weather for a location", map[string]interface{}{
				"type": "object",
			}),
		},
	})

	assert.Equal(t, "qwen/qwen3-8b", req.Model)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "Weather in Madrid?", req.Messages[0].Content.Text)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "get_weather", req.Tools[0].Function.Name)
}

func TestConvertResponse(t *testing.T) {
	client := &Client{model: "qwen/qwen3-8b", provider: "openrouter"}

	resp := client.convertResponse(openrouter.ChatCompletionResponse{
		ID:    "gen-1",
		Model: "qwen/qwen3-8b",
		Choices: []openrouter.ChatCompletionChoice{{
			Index:        0,
			FinishReason: "tool_calls",
			Message: openrouter.ChatCompletionMessage{
				Role: "assistant",
				ToolCalls: []openrouter.ToolCall{{
					ID:   "call_0",
					Type: openrouter.ToolTypeFunction,
					Function: openrouter.FunctionCall{
						Name:      "get_weather",
						Arguments: `{"location": "Madrid"}`,
					},
				}},
			},
		}},
	})

	assert.Equal(t, "gen-1", resp.ID)
	require.True(t, resp.RequiresToolExecution())
	calls := resp.GetToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "get_weather", calls[0].Function.Name)
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status   int
		wantType string
		wantCode string
	}{
		{status: 400, wantType: "validation_error", wantCode: "bad_request"},
		{status: 401, wantType: "authentication_error", wantCode: "invalid_api_key"},
		{status: 404, wantType: "model_error", wantCode: "model_not_found"},
		{status: 429, wantType: "rate_limit_error", wantCode: "rate_limit_exceeded"},
		{status: 503, wantType: "api_error", wantCode: "server_error"},
		{status: 418, wantType: "validation_error", wantCode: "client_error"},
	}

	for _, tt := range tests {
		errorType, errorCode := classifyStatus(tt.status)
		assert.Equal(t, tt.wantType, errorType)
		assert.Equal(t, tt.wantCode, errorCode)
	}
}
