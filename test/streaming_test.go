package test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-toolcall/pkg/llm"
)

func collectStream(t *testing.T, stream <-chan llm.StreamEvent) (string, []llm.ToolCallDelta, string) {
	t.Helper()

	var content strings.Builder
	var calls []llm.ToolCallDelta
	var finishReason string

	for event := range stream {
		switch {
		case event.IsError():
			t.Fatalf("unexpected stream error: %v", event.Error)
		case event.IsDelta():
			content.WriteString(event.Choice.Delta.Content)
			calls = append(calls, event.Choice.Delta.ToolCalls...)
		case event.IsDone():
			finishReason = event.Choice.FinishReason
		}
	}

	return content.String(), calls, finishReason
}

func TestStreamingExtractionEndToEnd(t *testing.T) {
	ctx := context.Background()

	t.Run("call_split_across_chunks_is_recovered", func(t *testing.T) {
		client, backend := newExtractionClient(
			"Checking.\n\n```tool_call\n{\"tool\": \"get_weather\", \"parameters\": {\"location\": \"Madrid\"}}\n```\n",
		)
		backend.WithChunkSize(9)
		defer func() { _ = client.Close() }()

		req := weatherRequest()
		req.Stream = true

		stream, err := client.StreamChatCompletion(ctx, req)
		require.NoError(t, err)

		content, calls, finishReason := collectStream(t, stream)

		require.Len(t, calls, 1)
		assert.Equal(t, "get_weather", calls[0].Function.Name)
		assert.JSONEq(t, `{"location": "Madrid"}`, calls[0].Function.Arguments)
		assert.Equal(t, llm.FinishReasonToolCalls, finishReason)

		// Content deltas are forwarded as generated
		assert.Contains(t, content, "Checking.")
	})

	t.Run("plain_text_stream_passes_through", func(t *testing.T) {
		client, backend := newExtractionClient("Hello from the model.")
		backend.WithChunkSize(5)
		defer func() { _ = client.Close() }()

		req := weatherRequest()
		req.Stream = true

		stream, err := client.StreamChatCompletion(ctx, req)
		require.NoError(t, err)

		content, calls, finishReason := collectStream(t, stream)
		assert.Equal(t, "Hello from the model.", content)
		assert.Empty(t, calls)
		assert.Equal(t, llm.FinishReasonStop, finishReason)
	})

	t.Run("repeated_call_is_emitted_once", func(t *testing.T) {
		client, _ := newExtractionClient(
			"<tool>get_weather(location=Madrid)</tool> and again " +
				"<tool>get_weather(location=Madrid)</tool>",
		)
		defer func() { _ = client.Close() }()

		req := weatherRequest()
		req.Stream = true

		stream, err := client.StreamChatCompletion(ctx, req)
		require.NoError(t, err)

		_, calls, _ := collectStream(t, stream)
		require.Len(t, calls, 1)
		assert.Equal(t, "get_weather", calls[0].Function.Name)
	})

	t.Run("canceled_context_stops_the_stream", func(t *testing.T) {
		client, backend := newExtractionClient("some response text")
		backend.WithChunkSize(4)
		defer func() { _ = client.Close() }()

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		stream, err := client.StreamChatCompletion(cancelCtx, weatherRequest())
		if err != nil {
			return
		}
		for range stream {
		}
	})
}
