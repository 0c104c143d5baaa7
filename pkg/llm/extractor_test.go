package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient returns canned responses and streams for wrapper tests
type fakeClient struct {
	response *ChatResponse
	events   []StreamEvent
	closed   bool
}

func (f *fakeClient) ChatCompletion(_ context.Context, _ ChatRequest) (*ChatResponse, error) {
	return f.response, nil
}

func (f *fakeClient) StreamChatCompletion(_ context.Context, _ ChatRequest) (<-chan StreamEvent, error) {
	ch := make(chan StreamEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (f *fakeClient) GetRemote() ClientRemoteInfo {
	return ClientRemoteInfo{Name: "fake"}
}

func (f *fakeClient) GetModelInfo() ModelInfo {
	return ModelInfo{Name: "fake-model", Provider: "fake", SupportsStreaming: true}
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func contentDelta(text string) StreamEvent {
	return NewDeltaEvent(0, &MessageDelta{Content: text})
}

func weatherTool() Tool {
	return NewTool("get_weather", "Current weather for a location", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"location": map[string]interface{}{"type": "string"},
		},
	})
}

func TestTextToolCallClientChatCompletion(t *testing.T) {
	t.Run("embedded_call_promoted_to_tool_calls", func(t *testing.T) {
		inner := &fakeClient{
			response: &ChatResponse{
				ID:    "resp-1",
				Model: "fake-model",
				Choices: []Choice{{
					Message: NewTextMessage(RoleAssistant,
						"Checking now.\n```tool_call\n{\"tool\": \"get_weather\", \"parameters\": {\"location\": \"Paris\"}}\n```"),
					FinishReason: FinishReasonStop,
				}},
			},
		}
		client := WithTextToolCalls(inner)

		resp, err := client.ChatCompletion(context.Background(), ChatRequest{
			Model: "fake-model",
			Tools: []Tool{weatherTool()},
		})
		require.NoError(t, err)
		require.Len(t, resp.Choices, 1)

		choice := resp.Choices[0]
		require.Len(t, choice.Message.ToolCalls, 1)
		assert.Equal(t, "get_weather", choice.Message.ToolCalls[0].Function.Name)
		assert.JSONEq(t, `{"location": "Paris"}`, choice.Message.ToolCalls[0].Function.Arguments)
		assert.Equal(t, FinishReasonToolCalls, choice.FinishReason)
		assert.Equal(t, "Checking now.", choice.Message.Content)
	})

	t.Run("undeclared_tool_rejected_via_request_allowlist", func(t *testing.T) {
		inner := &fakeClient{
			response: &ChatResponse{
				Choices: []Choice{{
					Message:      NewTextMessage(RoleAssistant, "<tool>rm_rf(path=\"/\")</tool>"),
					FinishReason: FinishReasonStop,
				}},
			},
		}
		client := WithTextToolCalls(inner)

		resp, err := client.ChatCompletion(context.Background(), ChatRequest{
			Tools: []Tool{weatherTool()},
		})
		require.NoError(t, err)
		choice := resp.Choices[0]
		assert.Empty(t, choice.Message.ToolCalls)
		assert.Equal(t, FinishReasonStop, choice.FinishReason)
	})

	t.Run("native_tool_calls_left_alone", func(t *testing.T) {
		native := ToolCall{ID: "n-1", Type: "function", Function: ToolCallFunction{Name: "native"}}
		inner := &fakeClient{
			response: &ChatResponse{
				Choices: []Choice{{
					Message: Message{
						Role:      RoleAssistant,
						Content:   "```tool_call\n{\"tool\": \"ignored\"}\n```",
						ToolCalls: []ToolCall{native},
					},
					FinishReason: FinishReasonToolCalls,
				}},
			},
		}
		client := WithTextToolCalls(inner)

		resp, err := client.ChatCompletion(context.Background(), ChatRequest{})
		require.NoError(t, err)
		require.Len(t, resp.Choices[0].Message.ToolCalls, 1)
		assert.Equal(t, "native", resp.Choices[0].Message.ToolCalls[0].Function.Name)
	})

	t.Run("plain_text_response_untouched", func(t *testing.T) {
		inner := &fakeClient{
			response: &ChatResponse{
				Choices: []Choice{{
					Message:      NewTextMessage(RoleAssistant, "Just an answer."),
					FinishReason: FinishReasonStop,
				}},
			},
		}
		client := WithTextToolCalls(inner)

		resp, err := client.ChatCompletion(context.Background(), ChatRequest{})
		require.NoError(t, err)
		assert.Equal(t, "Just an answer.", resp.Choices[0].Message.Content)
		assert.Equal(t, FinishReasonStop, resp.Choices[0].FinishReason)
	})
}

func TestTextToolCallClientStreaming(t *testing.T) {
	t.Run("call_split_across_deltas", func(t *testing.T) {
		inner := &fakeClient{
			events: []StreamEvent{
				contentDelta("Let me check.\n```tool_c"),
				contentDelta("all\n{\"tool\": \"get_weather\", \"parameters\": {\"location\": \"Paris\"}}\n"),
				contentDelta("```\n"),
				NewDoneEvent(0, FinishReasonStop),
			},
		}
		client := WithTextToolCalls(inner)

		events, err := client.StreamChatCompletion(context.Background(), ChatRequest{
			Tools: []Tool{weatherTool()},
		})
		require.NoError(t, err)

		var toolDeltas []ToolCallDelta
		var finishReason string
		for ev := range events {
			switch {
			case ev.IsDelta() && len(ev.Choice.Delta.ToolCalls) > 0:
				toolDeltas = append(toolDeltas, ev.Choice.Delta.ToolCalls...)
			case ev.IsDone():
				finishReason = ev.Choice.FinishReason
			}
		}

		require.Len(t, toolDeltas, 1)
		assert.Equal(t, "get_weather", toolDeltas[0].Function.Name)
		assert.JSONEq(t, `{"location": "Paris"}`, toolDeltas[0].Function.Arguments)
		assert.Equal(t, FinishReasonToolCalls, finishReason)
	})

	t.Run("stream_without_calls_passes_through", func(t *testing.T) {
		inner := &fakeClient{
			events: []StreamEvent{
				contentDelta("Hello"),
				contentDelta(" world"),
				NewDoneEvent(0, FinishReasonStop),
			},
		}
		client := WithTextToolCalls(inner)

		events, err := client.StreamChatCompletion(context.Background(), ChatRequest{})
		require.NoError(t, err)

		var content string
		var finishReason string
		for ev := range events {
			if ev.IsDelta() {
				content += ev.Choice.Delta.Content
			}
			if ev.IsDone() {
				finishReason = ev.Choice.FinishReason
			}
		}
		assert.Equal(t, "Hello world", content)
		assert.Equal(t, FinishReasonStop, finishReason)
	})

	t.Run("error_events_forwarded", func(t *testing.T) {
		inner := &fakeClient{
			events: []StreamEvent{
				NewErrorEvent(&Error{Code: "boom", Message: "it broke", Type: "server_error"}),
			},
		}
		client := WithTextToolCalls(inner)

		events, err := client.StreamChatCompletion(context.Background(), ChatRequest{})
		require.NoError(t, err)

		ev := <-events
		require.True(t, ev.IsError())
		assert.Equal(t, "boom", ev.Error.Code)
	})
}

func TestTextToolCallClientDelegation(t *testing.T) {
	inner := &fakeClient{}
	client := WithTextToolCalls(inner)

	assert.Equal(t, "fake", client.GetRemote().Name)
	assert.True(t, client.GetModelInfo().SupportsTools)
	require.NoError(t, client.Close())
	assert.True(t, inner.closed)
}
