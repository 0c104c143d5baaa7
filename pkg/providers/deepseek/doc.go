// Package deepseek implements the llm.Client interface for the DeepSeek API
// using the cohesion-org/deepseek-go SDK.
//
// DeepSeek models support native function calling and streaming. Reasoning
// models occasionally describe tool invocations in prose instead of the
// native channel; combine this client with llm.WithTextToolCalls when that
// matters.
package deepseek
