// Package openrouter implements the llm.Client interface for OpenRouter
// using the revrost/go-openrouter SDK.
//
// OpenRouter routes requests to many upstream models behind one API. Tool
// call behavior varies per routed model; models that emit calls as text
// work with this client when wrapped with llm.WithTextToolCalls.
package openrouter
