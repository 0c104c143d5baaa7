package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChoiceWantsToolExecution(t *testing.T) {
	assert.True(t, Choice{FinishReason: FinishReasonToolCalls}.WantsToolExecution())
	assert.True(t, Choice{Message: Message{ToolCalls: []ToolCall{{ID: "call_0"}}}}.WantsToolExecution())
	assert.False(t, Choice{FinishReason: FinishReasonStop}.WantsToolExecution())
}

func TestChatResponseToolCalls(t *testing.T) {
	resp := ChatResponse{
		Choices: []Choice{
			{Message: Message{ToolCalls: []ToolCall{{ID: "call_0"}}}},
			{Message: Message{ToolCalls: []ToolCall{{ID: "call_1"}}}},
		},
	}
	assert.True(t, resp.RequiresToolExecution())
	assert.Len(t, resp.GetToolCalls(), 2)

	empty := ChatResponse{Choices: []Choice{{FinishReason: FinishReasonStop}}}
	assert.False(t, empty.RequiresToolExecution())
	assert.Empty(t, empty.GetToolCalls())
}

func TestToolNames(t *testing.T) {
	req := ChatRequest{Tools: []Tool{
		NewTool("a", "first", nil),
		NewTool("b", "second", nil),
	}}
	assert.Equal(t, []string{"a", "b"}, req.ToolNames())
	assert.Nil(t, ChatRequest{}.ToolNames())
}
