package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-toolcall/pkg/toolcall"
)

func TestToolCallsFromExtracted(t *testing.T) {
	calls := ToolCallsFromExtracted([]toolcall.ToolCall{
		{
			ID:         "call_0",
			Name:       "get_weather",
			Parameters: map[string]any{"location": "Paris"},
		},
		{
			ID:         "my-id",
			Name:       "search",
			Parameters: map[string]any{},
		},
	})

	require.Len(t, calls, 2)
	assert.Equal(t, "call_0", calls[0].ID)
	assert.Equal(t, "function", calls[0].Type)
	assert.Equal(t, "get_weather", calls[0].Function.Name)
	assert.JSONEq(t, `{"location": "Paris"}`, calls[0].Function.Arguments)
	assert.JSONEq(t, `{}`, calls[1].Function.Arguments)

	assert.Nil(t, ToolCallsFromExtracted(nil))
}

func TestSchemaFromStruct(t *testing.T) {
	type WeatherParams struct {
		Location string `json:"location"`
		Days     int    `json:"days,omitempty"`
	}

	schema, err := SchemaFromStructAsMap(WeatherParams{})
	require.NoError(t, err)
	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "location")
	assert.Contains(t, props, "days")

	tool, err := NewToolFromStruct("get_weather", "Current weather", WeatherParams{})
	require.NoError(t, err)
	assert.Equal(t, "function", tool.Type)
	assert.Equal(t, "get_weather", tool.Function.Name)
	assert.NotNil(t, tool.Function.Parameters)
}
