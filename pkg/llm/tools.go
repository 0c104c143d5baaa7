// Tool and tool call types and functionality
package llm

import (
	"encoding/json"

	"github.com/inercia/go-toolcall/pkg/toolcall"
)

// Tool represents a function tool that can be called by the LLM
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction defines the function specification for a tool
type ToolFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters"`
}

// ToolCall represents a tool call made by the LLM
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction represents the function call details
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewTool creates a function tool with the given name, description and
// parameter schema
func NewTool(name, description string, parameters interface{}) Tool {
	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// ToolCallsFromExtracted converts calls recovered from model text into the
// native tool call representation, serializing parameters to JSON arguments
func ToolCallsFromExtracted(calls []toolcall.ToolCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	converted := make([]ToolCall, 0, len(calls))
	for _, call := range calls {
		args, err := json.Marshal(call.Parameters)
		if err != nil {
			args = []byte("{}")
		}
		converted = append(converted, ToolCall{
			ID:   call.ID,
			Type: "function",
			Function: ToolCallFunction{
				Name:      call.Name,
				Arguments: string(args),
			},
		})
	}
	return converted
}
