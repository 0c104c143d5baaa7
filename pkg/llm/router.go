package llm

import (
	"context"
	"fmt"
	"sync"
)

// ToolHandler executes a single tool call and returns the result content
// that should be sent back to the model. Handlers should be stateless and
// safe for concurrent use.
type ToolHandler interface {
	// Handle executes the tool call. The returned string becomes the content
	// of the tool result message.
	Handle(ctx context.Context, call ToolCall) (string, error)
}

// ToolHandlerFunc adapts a plain function to the ToolHandler interface.
type ToolHandlerFunc func(ctx context.Context, call ToolCall) (string, error)

// Handle implements ToolHandler.
func (f ToolHandlerFunc) Handle(ctx context.Context, call ToolCall) (string, error) {
	return f(ctx, call)
}

// ToolRouter dispatches tool calls to handlers registered by tool name,
// with thread-safe operations.
type ToolRouter struct {
	// handlers maps tool names to their registered handler
	handlers map[string]ToolHandler

	// defaultHandler provides fallback processing for unknown tools
	defaultHandler ToolHandler

	// mutex protects concurrent access to the router state
	mu sync.RWMutex
}

// NewToolRouter creates a new ToolRouter instance with an empty handler registry.
func NewToolRouter() *ToolRouter {
	return &ToolRouter{
		handlers: make(map[string]ToolHandler),
	}
}

// RegisterHandler registers a handler for the specified tool name,
// replacing any previous handler for that name.
func (r *ToolRouter) RegisterHandler(name string, handler ToolHandler) {
	if handler == nil {
		return // Silently ignore nil handlers
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[name] = handler
}

// UnregisterHandler removes the handler for the specified tool name.
// Returns true if a handler was registered, false otherwise.
func (r *ToolRouter) UnregisterHandler(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.handlers[name]
	delete(r.handlers, name)
	return exists
}

// SetDefaultHandler sets the fallback handler for tools without a registered
// handler. Pass nil to remove the default handler.
func (r *ToolRouter) SetDefaultHandler(handler ToolHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defaultHandler = handler
}

// Dispatch executes a single tool call and returns the tool result message.
func (r *ToolRouter) Dispatch(ctx context.Context, call ToolCall) (Message, error) {
	r.mu.RLock()
	handler, exists := r.handlers[call.Function.Name]
	if !exists {
		handler = r.defaultHandler
	}
	r.mu.RUnlock()

	if handler == nil {
		return Message{}, fmt.Errorf("no handler registered for tool %q", call.Function.Name)
	}

	result, err := handler.Handle(ctx, call)
	if err != nil {
		return Message{}, fmt.Errorf("tool %q failed: %w", call.Function.Name, err)
	}

	return NewToolResultMessage(call.ID, result), nil
}

// ExecuteToolCalls runs every tool call requested by the response and returns
// the tool result messages in call order, ready to append to the conversation.
// Partial failures are collected and returned as a multi-error alongside the
// results that succeeded; a failed call yields a tool result message carrying
// the error text so the model can react to it.
func (r *ToolRouter) ExecuteToolCalls(ctx context.Context, resp *ChatResponse) ([]Message, error) {
	if resp == nil || !resp.RequiresToolExecution() {
		return nil, nil
	}

	var messages []Message
	var errors []error

	for _, call := range resp.GetToolCalls() {
		msg, err := r.Dispatch(ctx, call)
		if err != nil {
			errors = append(errors, err)
			messages = append(messages, NewToolResultMessage(call.ID, err.Error()))
			continue
		}
		messages = append(messages, msg)
	}

	if len(errors) > 0 {
		return messages, &MultiError{Errors: errors}
	}

	return messages, nil
}

// RegisteredTools returns the names of all tools with a registered handler.
// The order of names is not guaranteed.
func (r *ToolRouter) RegisteredTools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}

	return names
}

// HasHandler checks if a handler is registered for the specified tool name.
func (r *ToolRouter) HasHandler(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.handlers[name]
	return exists
}

// Clear removes all registered handlers and the default handler.
func (r *ToolRouter) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers = make(map[string]ToolHandler)
	r.defaultHandler = nil
}

// MultiError represents multiple errors that occurred during tool dispatch.
type MultiError struct {
	Errors []error
}

// Error implements the error interface by joining all error messages.
func (me *MultiError) Error() string {
	if len(me.Errors) == 0 {
		return ""
	}

	if len(me.Errors) == 1 {
		return me.Errors[0].Error()
	}

	var result string
	for i, err := range me.Errors {
		if i > 0 {
			result += "; "
		}
		result += err.Error()
	}

	return result
}

// Unwrap returns the underlying errors for error inspection.
func (me *MultiError) Unwrap() []error {
	return me.Errors
}
