// Configuration types and response format specifications
package llm

import (
	"os"
	"strconv"
	"time"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultOllamaModel = "gpt-oss:20b"
)

// Ollama speaks the OpenAI wire protocol on /v1, so it is served by the
// openai provider with this base URL.
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

// TextToolCallsMode controls when a client is wrapped with text tool-call
// recovery (see WithTextToolCalls).
type TextToolCallsMode string

const (
	// TextToolCallsAuto wraps the client only when the model does not
	// support native tool calls. This is the default.
	TextToolCallsAuto TextToolCallsMode = "auto"
	// TextToolCallsAlways wraps unconditionally; useful for models that
	// nominally support tools but still emit them as text.
	TextToolCallsAlways TextToolCallsMode = "always"
	// TextToolCallsOff never wraps.
	TextToolCallsOff TextToolCallsMode = "off"
)

// ClientConfig holds configuration for creating LLM clients
type ClientConfig struct {
	Provider   string            `json:"provider"` // openai, gemini, deepseek, openrouter, bedrock, etc.
	Model      string            `json:"model"`
	APIKey     string            `json:"api_key,omitempty"`
	BaseURL    string            `json:"base_url,omitempty"`
	Timeout    time.Duration     `json:"timeout,omitempty"`
	MaxRetries int               `json:"max_retries,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"` // Provider-specific configs

	// TextToolCalls selects when the created client is wrapped with text
	// tool-call recovery. Empty means TextToolCallsAuto.
	TextToolCalls TextToolCallsMode `json:"text_tool_calls,omitempty"`
}

// ResponseFormat specifies the desired response format for structured outputs
type ResponseFormat struct {
	Type       ResponseFormatType `json:"type"`
	JSONSchema *JSONSchema        `json:"json_schema,omitempty"`
}

// ResponseFormatType defines the type of response format
type ResponseFormatType string

const (
	// ResponseFormatText indicates plain text response (default)
	ResponseFormatText ResponseFormatType = "text"
	// ResponseFormatJSON indicates JSON object response without strict schema
	ResponseFormatJSON ResponseFormatType = "json_object"
	// ResponseFormatJSONSchema indicates JSON response with strict schema validation
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// JSONSchema represents a JSON Schema specification for structured outputs
type JSONSchema struct {
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Schema      interface{} `json:"schema"`
	Strict      *bool       `json:"strict,omitempty"`
}

// parseTimeoutFromEnv parses timeout from environment variable with fallback to default
func parseTimeoutFromEnv(envVar string, defaultTimeout time.Duration) time.Duration {
	if timeoutStr := os.Getenv(envVar); timeoutStr != "" {
		if timeoutSecs, err := strconv.Atoi(timeoutStr); err == nil && timeoutSecs > 0 {
			return time.Duration(timeoutSecs) * time.Second
		}
	}
	return defaultTimeout
}

// GetLLMFromEnv builds a ClientConfig from the conventional environment
// variables, preferring explicit OpenAI-compatible endpoints, then hosted
// APIs, then a local Ollama server.
func GetLLMFromEnv() ClientConfig {
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			apiKey = "dummy" // Some endpoints don't require real keys
		}

		model := DefaultOpenAIModel
		if customModel := os.Getenv("OPENAI_MODEL"); customModel != "" {
			model = customModel
		} else if customModel := os.Getenv("MODEL"); customModel != "" {
			model = customModel
		}

		return ClientConfig{
			Provider: "openai",
			Model:    model,
			APIKey:   apiKey,
			BaseURL:  baseURL,
			Timeout:  parseTimeoutFromEnv("OPENAI_TIMEOUT", 30*time.Second),
		}
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		return ClientConfig{
			Provider: "openai",
			Model:    DefaultOpenAIModel,
			APIKey:   apiKey,
			Timeout:  parseTimeoutFromEnv("OPENAI_TIMEOUT", 30*time.Second),
		}
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		model := DefaultGeminiModel
		if customModel := os.Getenv("GEMINI_MODEL"); customModel != "" {
			model = customModel
		}

		return ClientConfig{
			Provider: "gemini",
			Model:    model,
			APIKey:   apiKey,
			Timeout:  parseTimeoutFromEnv("GEMINI_TIMEOUT", 30*time.Second),
		}
	}

	// Default: local Ollama through the OpenAI-compatible endpoint.
	return ClientConfig{
		Provider: "openai",
		Model:    DefaultOllamaModel,
		APIKey:   "dummy",
		BaseURL:  DefaultOllamaBaseURL,
		Timeout:  parseTimeoutFromEnv("OLLAMA_TIMEOUT", 60*time.Second),
	}
}
