package test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inercia/go-toolcall/pkg/factory"
	"github.com/inercia/go-toolcall/pkg/llm"
	"github.com/inercia/go-toolcall/pkg/providers/mock"
)

// createTestClient creates a client using environment configuration
func createTestClient(t *testing.T) llm.Client {
	t.Helper()

	factory := factory.New()
	config := llm.GetLLMFromEnv()

	client, err := factory.CreateClient(config)
	require.NoError(t, err, "Failed to create LLM client")
	require.NotNil(t, client, "Client should not be nil")

	// Log which provider we're using
	info := client.GetModelInfo()
	t.Logf("🤖 Using %s provider with model %s", info.Provider, info.Name)

	return client
}

// newExtractionClient wraps a scripted mock client with text tool-call
// recovery, the same wrapping the factory applies to providers without a
// native tool channel
func newExtractionClient(scripted ...string) (llm.Client, *mock.Client) {
	backend := mock.NewClient("e2e-model")
	for _, text := range scripted {
		backend.WithTextResponse(text)
	}
	return llm.WithTextToolCalls(backend), backend
}

// weatherTool declares the tool used across the end-to-end tests
func weatherTool() llm.Tool {
	return llm.NewTool("get_weather", "Get the current weather for a location", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{"type": "string"},
			"unit":     map[string]any{"type": "string"},
		},
		"required": []string{"location"},
	})
}

// weatherRequest builds a chat request that declares the weather tool
func weatherRequest() llm.ChatRequest {
	return llm.ChatRequest{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "What's the weather in Madrid?"),
		},
		Tools: []llm.Tool{weatherTool()},
	}
}

// skipIfNoProvider skips the test if no real LLM provider is configured
func skipIfNoProvider(t *testing.T, config llm.ClientConfig) {
	t.Helper()

	if config.APIKey == "" || config.APIKey == "dummy" {
		t.Skip("No LLM provider available - set OPENAI_API_KEY or GEMINI_API_KEY")
	}
}
