package factory

import (
	"fmt"
	"strings"

	"github.com/inercia/go-toolcall/pkg/llm"
)

const DefaultProvider = "openai"

// Factory creates LLM clients based on configuration
type Factory struct{}

// New creates a new client factory
func New() *Factory {
	return &Factory{}
}

// CreateClient creates an LLM client based on the configuration.
//
// Depending on ClientConfig.TextToolCalls, the returned client may be
// wrapped with llm.WithTextToolCalls so tool calls emitted as text are
// recovered into structured tool calls.
func (f *Factory) CreateClient(config llm.ClientConfig) (llm.Client, error) {
	// Default to "openai" if provider is empty for backward compatibility
	provider := config.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	provider = strings.ToLower(provider)

	// Validate required fields
	if config.Model == "" {
		return nil, &llm.Error{
			Code:    "missing_model",
			Message: "model is required",
			Type:    "validation_error",
		}
	}
	// Use the provider registry to create clients
	constructor, exists := GetProvider(provider)
	if !exists {
		return nil, &llm.Error{
			Code:    "unsupported_provider",
			Message: fmt.Sprintf("unsupported provider: %s", provider),
			Type:    "validation_error",
		}
	}

	client, err := constructor(config)
	if err != nil {
		return nil, err
	}

	if config.MaxRetries > 0 {
		retryConfig := llm.DefaultRetryConfig()
		retryConfig.MaxRetries = config.MaxRetries
		client = llm.WithRetry(client, retryConfig)
	}

	switch config.TextToolCalls {
	case llm.TextToolCallsAlways:
		return llm.WithTextToolCalls(client), nil
	case llm.TextToolCallsOff:
		return client, nil
	default:
		if !client.GetModelInfo().SupportsTools {
			return llm.WithTextToolCalls(client), nil
		}
		return client, nil
	}
}
