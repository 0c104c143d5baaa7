package toolcall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindJSONBlocks(t *testing.T) {
	var m FormatMatcher

	t.Run("payload_and_offsets", func(t *testing.T) {
		text := "before\n```tool_call\n{\"tool\": \"t\"}\n```\nafter"
		blocks := m.FindJSONBlocks(text)
		require.Len(t, blocks, 1)
		assert.Equal(t, `{"tool": "t"}`, blocks[0].Payload)
		assert.Equal(t, "```tool_call\n{\"tool\": \"t\"}\n```", text[blocks[0].Start:blocks[0].End])
	})

	t.Run("multiline_payload", func(t *testing.T) {
		blocks := m.FindJSONBlocks("```json\n{\n  \"tool\": \"t\"\n}\n```")
		require.Len(t, blocks, 1)
		assert.Equal(t, "{\n  \"tool\": \"t\"\n}", blocks[0].Payload)
	})

	t.Run("tag_requires_newline", func(t *testing.T) {
		assert.Empty(t, m.FindJSONBlocks("```tool_call {\"tool\": \"t\"}```"))
	})

	t.Run("multiple_blocks_in_order", func(t *testing.T) {
		blocks := m.FindJSONBlocks("```json\n{\"a\": 1}\n```\ntext\n```tool_code\n{\"b\": 2}\n```")
		require.Len(t, blocks, 2)
		assert.Equal(t, `{"a": 1}`, blocks[0].Payload)
		assert.Equal(t, `{"b": 2}`, blocks[1].Payload)
		assert.Less(t, blocks[0].End, blocks[1].Start)
	})
}

func TestFindFunctionalCalls(t *testing.T) {
	var m FormatMatcher

	t.Run("name_and_args", func(t *testing.T) {
		calls := m.FindFunctionalCalls(`say <tool>greet(name="Ada")</tool> now`)
		require.Len(t, calls, 1)
		assert.Equal(t, "greet", calls[0].Name)
		assert.Equal(t, `name="Ada"`, calls[0].Args)
	})

	t.Run("whitespace_around_name_and_tags", func(t *testing.T) {
		calls := m.FindFunctionalCalls("<tool> lookup (id=3) </tool>")
		require.Len(t, calls, 1)
		assert.Equal(t, "lookup", calls[0].Name)
	})

	t.Run("unclosed_tag_does_not_match", func(t *testing.T) {
		assert.Empty(t, m.FindFunctionalCalls("<tool>greet(name=\"Ada\")"))
	})
}

func TestStrip(t *testing.T) {
	var m FormatMatcher

	t.Run("removes_call_spans_keeps_prose", func(t *testing.T) {
		text := "I will check.\n```tool_call\n{\"tool\": \"t\"}\n```\nDone checking <tool>x()</tool> now."
		assert.Equal(t, "I will check.\n\nDone checking  now.", m.Strip(text))
	})

	t.Run("text_without_calls_unchanged", func(t *testing.T) {
		assert.Equal(t, "  plain  ", m.Strip("  plain  "))
	})
}
