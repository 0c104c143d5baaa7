package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inercia/go-toolcall/pkg/llm"
)

// TestIntegrationOverall validates the flow from environment configuration to
// actual LLM communication, including tool-call recovery from text output.
// It only runs when a real provider is configured through the environment;
// deterministic coverage lives in the mock-driven tests in this package.
func TestIntegrationOverall(t *testing.T) {
	skipIfNoProvider(t, llm.GetLLMFromEnv())

	client := createTestClient(t)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	t.Run("basic_chat", func(t *testing.T) {
		req := llm.ChatRequest{
			Messages: []llm.Message{
				llm.NewTextMessage(llm.RoleUser, "Reply with the single word: pong"),
			},
		}

		resp, err := client.ChatCompletion(ctx, req)
		require.NoError(t, err)
		require.NotEmpty(t, resp.Choices)
		require.NotEmpty(t, resp.Choices[0].Message.Content)
	})

	t.Run("tool_declaration_round_trip", func(t *testing.T) {
		req := weatherRequest()

		resp, err := client.ChatCompletion(ctx, req)
		require.NoError(t, err)
		require.NotEmpty(t, resp.Choices)

		// Whether the model decides to call the tool is up to the model;
		// we only require that declared tools don't break the request.
		if resp.RequiresToolExecution() {
			call := resp.GetToolCalls()[0]
			require.Equal(t, "get_weather", call.Function.Name)
			require.NotEmpty(t, call.Function.Arguments)
		}
	})
}
