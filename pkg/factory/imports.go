package factory

import (
	"github.com/inercia/go-toolcall/pkg/llm"
	"github.com/inercia/go-toolcall/pkg/providers/bedrock"
	"github.com/inercia/go-toolcall/pkg/providers/deepseek"
	"github.com/inercia/go-toolcall/pkg/providers/gemini"
	"github.com/inercia/go-toolcall/pkg/providers/mock"
	"github.com/inercia/go-toolcall/pkg/providers/openai"
	"github.com/inercia/go-toolcall/pkg/providers/openrouter"
)

func init() {
	// Register the openrouter provider
	RegisterProvider("openrouter", func(config llm.ClientConfig) (llm.Client, error) {
		return openrouter.NewClient(config)
	})

	// Register the OpenAI provider
	RegisterProvider("openai", func(config llm.ClientConfig) (llm.Client, error) {
		return openai.NewClient(config)
	})

	// Register the deepseek provider
	RegisterProvider("deepseek", func(config llm.ClientConfig) (llm.Client, error) {
		return deepseek.NewClient(config)
	})

	// Register the gemini provider
	RegisterProvider("gemini", func(config llm.ClientConfig) (llm.Client, error) {
		return gemini.NewClient(config)
	})

	// Register the bedrock provider
	RegisterProvider("bedrock", func(config llm.ClientConfig) (llm.Client, error) {
		return bedrock.NewClient(config)
	})

	// Ollama speaks the OpenAI wire protocol; route it through the OpenAI client
	RegisterProvider("ollama", func(config llm.ClientConfig) (llm.Client, error) {
		if config.BaseURL == "" {
			config.BaseURL = llm.DefaultOllamaBaseURL
		}
		if config.APIKey == "" {
			config.APIKey = "dummy"
		}
		return openai.NewClient(config)
	})

	// Register the mock provider
	RegisterProvider("mock", func(config llm.ClientConfig) (llm.Client, error) {
		return mock.NewClient(config.Model), nil
	})
	RegisterProvider("mocked", func(config llm.ClientConfig) (llm.Client, error) {
		return mock.NewClient(config.Model), nil
	})
}
