// Package mock provides a mock client implementation for testing go-toolcall applications.
//
// This package implements the llm.Client interface with scripted responses,
// errors, and behaviors for testing LLM-based applications without real API
// calls.
//
// Features:
// - Queued responses consumed in order
// - Streaming simulation with configurable chunk sizes
// - Error injection
// - Request logging and assertions
//
// The chunked streaming makes the mock well suited to exercising text
// tool-call recovery: a call embedded in a scripted response is split across
// several deltas exactly like a real provider stream would.
package mock
