package toolcall

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolCallsJSONBlock(t *testing.T) {
	t.Run("fenced_tool_call_block", func(t *testing.T) {
		p := NewParser()
		text := "Let me look that up.\n```tool_call\n{\"tool\": \"get_weather\", \"parameters\": {\"location\": \"Paris\"}}\n```"

		calls := p.ParseToolCalls(text)
		require.Len(t, calls, 1)
		assert.Equal(t, "get_weather", calls[0].Name)
		assert.Equal(t, "call_0", calls[0].ID)
		assert.Equal(t, map[string]any{"location": "Paris"}, calls[0].Parameters)

		stats := p.Stats()
		assert.Equal(t, int64(1), stats.TotalParsed)
		assert.Equal(t, int64(0), stats.ParseErrors)
	})

	t.Run("tool_code_and_json_tags", func(t *testing.T) {
		p := NewParser()
		text := "```tool_code\n{\"tool\": \"a\"}\n```\n" +
			"```json\n{\"tool\": \"b\"}\n```\n" +
			"```python\n{\"tool\": \"not_a_call\"}\n```"

		calls := p.ParseToolCalls(text)
		require.Len(t, calls, 2)
		assert.Equal(t, "a", calls[0].Name)
		assert.Equal(t, "b", calls[1].Name)
	})

	t.Run("explicit_id_preserved", func(t *testing.T) {
		p := NewParser()
		calls := p.ParseToolCalls("```tool_call\n{\"tool\": \"t\", \"id\": \"my-id\"}\n```")
		require.Len(t, calls, 1)
		assert.Equal(t, "my-id", calls[0].ID)
	})

	t.Run("missing_parameters_yields_empty_map", func(t *testing.T) {
		p := NewParser()
		calls := p.ParseToolCalls("```tool_call\n{\"tool\": \"t\"}\n```")
		require.Len(t, calls, 1)
		require.NotNil(t, calls[0].Parameters)
		assert.Empty(t, calls[0].Parameters)
	})

	t.Run("json_block_without_tool_key_counts_parse_error", func(t *testing.T) {
		p := NewParser(WithLogErrors(false))
		calls := p.ParseToolCalls("```json\n{\"key\": \"value\"}\n```")
		assert.Empty(t, calls)
		assert.Equal(t, int64(1), p.Stats().ParseErrors)
	})

	t.Run("invalid_json_does_not_abort_scan", func(t *testing.T) {
		p := NewParser(WithLogErrors(false))
		text := "```tool_call\n{not json at all\n```\n" +
			"```tool_call\n{\"tool\": \"survivor\"}\n```"

		calls := p.ParseToolCalls(text)
		require.Len(t, calls, 1)
		assert.Equal(t, "survivor", calls[0].Name)
		assert.Equal(t, "call_0", calls[0].ID)

		stats := p.Stats()
		assert.Equal(t, int64(1), stats.ParseErrors)
		assert.Equal(t, int64(1), stats.TotalParsed)
	})

	t.Run("closing_fence_may_be_indented", func(t *testing.T) {
		p := NewParser()
		calls := p.ParseToolCalls("```tool_call\n{\"tool\": \"t\"}\n  ```")
		require.Len(t, calls, 1)
	})

	t.Run("unterminated_block_is_ignored", func(t *testing.T) {
		p := NewParser()
		calls := p.ParseToolCalls("```tool_call\n{\"tool\": \"t\"}")
		assert.Empty(t, calls)
		assert.Equal(t, int64(0), p.Stats().ParseErrors)
	})

	t.Run("plain_text_returns_nil", func(t *testing.T) {
		p := NewParser()
		assert.Nil(t, p.ParseToolCalls("no calls here, just prose"))
		assert.Nil(t, p.ParseToolCalls(""))
	})
}

func TestParseToolCallsFunctional(t *testing.T) {
	t.Run("functional_form_with_coercion", func(t *testing.T) {
		p := NewParser()
		calls := p.ParseToolCalls(`<tool>search(query="golang parser", count=5, exact=true)</tool>`)
		require.Len(t, calls, 1)
		assert.Equal(t, "search", calls[0].Name)
		assert.Equal(t, "call_0", calls[0].ID)
		assert.Equal(t, map[string]any{
			"query": "golang parser",
			"count": float64(5),
			"exact": true,
		}, calls[0].Parameters)
	})

	t.Run("no_arguments", func(t *testing.T) {
		p := NewParser()
		calls := p.ParseToolCalls("<tool>refresh()</tool>")
		require.Len(t, calls, 1)
		assert.Equal(t, "refresh", calls[0].Name)
		assert.Empty(t, calls[0].Parameters)
	})

	t.Run("json_blocks_ordered_before_functional", func(t *testing.T) {
		p := NewParser()
		text := "<tool>second()</tool>\n```tool_call\n{\"tool\": \"first\"}\n```"

		calls := p.ParseToolCalls(text)
		require.Len(t, calls, 2)
		assert.Equal(t, "first", calls[0].Name)
		assert.Equal(t, "call_0", calls[0].ID)
		assert.Equal(t, "second", calls[1].Name)
		assert.Equal(t, "call_1", calls[1].ID)
	})
}

func TestParseToolCallsAllowlist(t *testing.T) {
	t.Run("unauthorized_tool_rejected", func(t *testing.T) {
		p := NewParser(WithAllowedTools("get_weather"), WithLogErrors(false))
		text := "```tool_call\n{\"tool\": \"delete_files\"}\n```\n" +
			"```tool_call\n{\"tool\": \"get_weather\"}\n```"

		calls := p.ParseToolCalls(text)
		require.Len(t, calls, 1)
		assert.Equal(t, "get_weather", calls[0].Name)

		stats := p.Stats()
		assert.Equal(t, int64(1), stats.RejectedUnauthorized)
		assert.Equal(t, int64(1), stats.TotalParsed)
	})

	t.Run("empty_allowlist_rejects_everything", func(t *testing.T) {
		p := NewParser(WithAllowedTools(), WithLogErrors(false))
		calls := p.ParseToolCalls("<tool>anything()</tool>")
		assert.Empty(t, calls)
		assert.Equal(t, int64(1), p.Stats().RejectedUnauthorized)
	})

	t.Run("no_allowlist_accepts_everything", func(t *testing.T) {
		p := NewParser()
		calls := p.ParseToolCalls("<tool>anything()</tool>")
		assert.Len(t, calls, 1)
	})
}

func TestParseToolCallsSizeLimit(t *testing.T) {
	t.Run("payload_at_limit_accepted_over_limit_rejected", func(t *testing.T) {
		// Payload shaped so its total length is exactly the limit.
		const limit = 64
		pad := func(n int) string {
			prefix := `{"tool": "t", "parameters": {"v": "`
			suffix := `"}}`
			return prefix + strings.Repeat("x", n-len(prefix)-len(suffix)) + suffix
		}

		p := NewParser(WithMaxJSONSize(limit), WithLogErrors(false))
		calls := p.ParseToolCalls("```tool_call\n" + pad(limit) + "\n```")
		require.Len(t, calls, 1)
		assert.Equal(t, int64(0), p.Stats().RejectedSize)

		calls = p.ParseToolCalls("```tool_call\n" + pad(limit+1) + "\n```")
		assert.Empty(t, calls)
		assert.Equal(t, int64(1), p.Stats().RejectedSize)
	})
}

func TestParseToolCallsCeiling(t *testing.T) {
	t.Run("stops_at_max_tool_calls", func(t *testing.T) {
		p := NewParser(WithMaxToolCalls(3), WithLogErrors(false))

		var sb strings.Builder
		for i := 0; i < 10; i++ {
			fmt.Fprintf(&sb, "```tool_call\n{\"tool\": \"tool_%d\"}\n```\n", i)
		}

		calls := p.ParseToolCalls(sb.String())
		require.Len(t, calls, 3)
		assert.Equal(t, "tool_0", calls[0].Name)
		assert.Equal(t, "tool_2", calls[2].Name)
		assert.Equal(t, int64(3), p.Stats().TotalParsed)
	})
}

func TestParserResetStats(t *testing.T) {
	p := NewParser(WithLogErrors(false))
	p.ParseToolCalls("```tool_call\n{\"tool\": \"t\"}\n```")
	require.Equal(t, int64(1), p.Stats().TotalParsed)

	p.ResetStats()
	assert.Equal(t, Statistics{}, p.Stats())
}
