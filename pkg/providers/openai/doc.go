// Package openai implements the llm.Client interface for the OpenAI API and
// any OpenAI-compatible endpoint (Ollama, vLLM, LocalAI and friends).
//
// The client supports chat completions, streaming, native function calling
// and structured output response formats. Models served from custom base
// URLs frequently lack native tool support; wrap the client with
// llm.WithTextToolCalls (the factory does this automatically in auto mode)
// to recover tool calls embedded in their text output.
package openai
