// Package llm provides abstractions and interfaces for Large Language Model clients.
//
// This package defines the core interfaces that all LLM providers must implement,
// along with common types for requests, responses, messages, and streaming.
//
// The main components include:
//
// - Client interface: Core LLM client functionality
// - Message types: Role-tagged text messages with tool call support
// - Tool system: Function declarations and tool call results
// - Configuration: Provider-agnostic configuration
// - Error handling: Standardized error types
// - Streaming: Real-time response streaming
// - Text tool-call recovery: WithTextToolCalls wraps any client so tool
//   invocations embedded in the model's text become native tool calls
//
// Provider implementations are located in separate packages under /pkg/providers/
// to maintain clean separation of concerns and avoid import cycles.
package llm
