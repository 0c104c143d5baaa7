// Package gemini implements the llm.Client interface for Google Gemini
// using the official google.golang.org/genai library.
//
// Tool declarations are rendered into the prompt and the model is asked to
// answer with fenced tool_call blocks. The factory wraps this client with
// llm.WithTextToolCalls in auto mode, so those blocks come back to callers
// as regular tool calls.
package gemini
