package llm

import (
	"context"
	"encoding/json"

	"github.com/inercia/go-toolcall/pkg/toolcall"
)

// TextToolCallClient wraps an LLM client and recovers tool calls that the
// model emitted inside its text output instead of the provider's native
// tool-call channel. Recovered calls are promoted to Message.ToolCalls (or
// tool call deltas when streaming) and their text spans are removed from the
// content, so callers handle them exactly like native calls.
type TextToolCallClient struct {
	client Client
	opts   []toolcall.Option
}

// WithTextToolCalls wraps client with text tool-call recovery. The options
// tune the underlying extraction; by default the allowlist is derived from
// the tools declared on each request.
func WithTextToolCalls(client Client, opts ...toolcall.Option) Client {
	return &TextToolCallClient{
		client: client,
		opts:   opts,
	}
}

// parserOptions builds extraction options for one request. Request-declared
// tools become the allowlist; explicitly configured options take precedence
// because they are applied last.
func (c *TextToolCallClient) parserOptions(req ChatRequest) []toolcall.Option {
	var opts []toolcall.Option
	if names := req.ToolNames(); len(names) > 0 {
		opts = append(opts, toolcall.WithAllowedTools(names...))
	}
	return append(opts, c.opts...)
}

// ChatCompletion implements Client, scanning each returned choice for
// embedded tool calls
func (c *TextToolCallClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	resp, err := c.client.ChatCompletion(ctx, req)
	if err != nil || resp == nil {
		return resp, err
	}

	parser := toolcall.NewParser(c.parserOptions(req)...)
	var matcher toolcall.FormatMatcher

	for i := range resp.Choices {
		choice := &resp.Choices[i]
		if choice.Message.HasToolCalls() || choice.Message.Content == "" {
			continue
		}
		calls := parser.ParseToolCalls(choice.Message.Content)
		if len(calls) == 0 {
			continue
		}
		choice.Message.ToolCalls = ToolCallsFromExtracted(calls)
		choice.Message.Content = matcher.Strip(choice.Message.Content)
		choice.FinishReason = FinishReasonToolCalls
	}
	return resp, nil
}

// StreamChatCompletion implements Client. Content deltas are forwarded
// unchanged while a streaming extractor watches them; when an embedded call
// completes, a tool call delta event follows it on the output channel.
func (c *TextToolCallClient) StreamChatCompletion(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error) {
	eventChan, err := c.client.StreamChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	parser := toolcall.NewStreamParser(c.parserOptions(req)...)
	outChan := make(chan StreamEvent, 10)

	go func() {
		defer close(outChan)

		forward := func(event StreamEvent) bool {
			select {
			case outChan <- event:
				return true
			case <-ctx.Done():
				return false
			}
		}

		emitted := 0
		for event := range eventChan {
			switch {
			case event.IsDelta() && event.Choice.Delta.Content != "":
				if !forward(event) {
					return
				}
				calls := parser.ProcessChunk(event.Choice.Delta.Content)
				if len(calls) > 0 {
					delta := extractedCallsDelta(calls, emitted)
					emitted += len(calls)
					if !forward(NewDeltaEvent(event.Choice.Index, delta)) {
						return
					}
				}

			case event.IsDone():
				if calls := parser.Flush(); len(calls) > 0 {
					delta := extractedCallsDelta(calls, emitted)
					emitted += len(calls)
					if !forward(NewDeltaEvent(event.Choice.Index, delta)) {
						return
					}
				}
				if emitted > 0 && event.Choice.FinishReason != FinishReasonToolCalls {
					event = NewDoneEvent(event.Choice.Index, FinishReasonToolCalls)
				}
				if !forward(event) {
					return
				}

			default:
				if !forward(event) {
					return
				}
			}
		}
	}()

	return outChan, nil
}

// GetRemote implements Client
func (c *TextToolCallClient) GetRemote() ClientRemoteInfo {
	return c.client.GetRemote()
}

// GetModelInfo implements Client, reporting tool support since recovered
// calls make tools usable even on models without native support
func (c *TextToolCallClient) GetModelInfo() ModelInfo {
	info := c.client.GetModelInfo()
	info.SupportsTools = true
	return info
}

// Close implements Client
func (c *TextToolCallClient) Close() error {
	return c.client.Close()
}

// extractedCallsDelta converts recovered calls into a tool call delta,
// numbering them after any calls already emitted on this stream
func extractedCallsDelta(calls []toolcall.ToolCall, offset int) *MessageDelta {
	deltas := make([]ToolCallDelta, 0, len(calls))
	for i, call := range calls {
		args, err := json.Marshal(call.Parameters)
		if err != nil {
			args = []byte("{}")
		}
		deltas = append(deltas, ToolCallDelta{
			Index: offset + i,
			ID:    call.ID,
			Type:  "function",
			Function: &ToolCallFunctionDelta{
				Name:      call.Name,
				Arguments: string(args),
			},
		})
	}
	return &MessageDelta{ToolCalls: deltas}
}
