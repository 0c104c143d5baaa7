// Package factory provides provider registration and factory functionality for the go-toolcall framework.
//
// This package manages the registration of LLM providers and provides factory methods
// to create clients. When imported, it automatically registers all available providers
// through the side effects of importing their packages.
//
// Key components:
//   - Provider registration system with thread-safe registry
//   - Factory for creating clients based on configuration
//   - Automatic wrapping with text tool-call recovery for providers without
//     a native tool channel (see llm.ClientConfig.TextToolCalls)
//
// Example usage:
//
//	import (
//	    "github.com/inercia/go-toolcall/pkg/llm"
//	    "github.com/inercia/go-toolcall/pkg/factory"
//	)
//
//	factory := factory.New()
//	client, err := factory.CreateClient(llm.ClientConfig{
//	    Provider: "gemini",
//	    Model: "gemini-2.0-flash",
//	    APIKey: "your-api-key",
//	})
package factory
