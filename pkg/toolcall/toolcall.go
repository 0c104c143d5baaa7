package toolcall

import "reflect"

// ToolCall is a single tool invocation recovered from model text.
type ToolCall struct {
	// ID identifies the call within its response. It is taken from the
	// payload's "id" field when present, otherwise generated as "call_<n>"
	// where n is the zero-based position of the call in the response.
	ID string `json:"id"`

	// Name is the tool being invoked.
	Name string `json:"name"`

	// Parameters holds the decoded arguments. Never nil for a parsed call.
	Parameters map[string]any `json:"parameters"`
}

// Equal reports whether two calls are identical in ID, name and parameters.
// The streaming parser uses this to suppress duplicates across overlapping
// buffer scans.
func (c ToolCall) Equal(other ToolCall) bool {
	return c.ID == other.ID &&
		c.Name == other.Name &&
		reflect.DeepEqual(c.Parameters, other.Parameters)
}
