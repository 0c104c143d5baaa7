package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageHelpers(t *testing.T) {
	t.Run("text_message", func(t *testing.T) {
		msg := NewTextMessage(RoleUser, "hello")
		assert.Equal(t, RoleUser, msg.Role)
		assert.Equal(t, "hello", msg.Content)
		assert.False(t, msg.HasToolCalls())
	})

	t.Run("system_message", func(t *testing.T) {
		msg := NewSystemMessage("be terse")
		assert.Equal(t, RoleSystem, msg.Role)
		assert.Equal(t, "be terse", msg.Content)
	})

	t.Run("tool_result_message", func(t *testing.T) {
		msg := NewToolResultMessage("call_0", `{"temp": 21}`)
		assert.Equal(t, RoleTool, msg.Role)
		assert.Equal(t, "call_0", msg.ToolCallID)
		assert.Equal(t, `{"temp": 21}`, msg.Content)
	})

	t.Run("add_tool_call", func(t *testing.T) {
		msg := NewTextMessage(RoleAssistant, "")
		msg.AddToolCall(ToolCall{ID: "call_0", Type: "function"})
		assert.True(t, msg.HasToolCalls())
		require.Len(t, msg.ToolCalls, 1)
	})
}

func TestMessageJSONRoundTrip(t *testing.T) {
	original := Message{
		Role:    RoleAssistant,
		Content: "on it",
		ToolCalls: []ToolCall{{
			ID:   "call_0",
			Type: "function",
			Function: ToolCallFunction{
				Name:      "get_weather",
				Arguments: `{"location":"Paris"}`,
			},
		}},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
