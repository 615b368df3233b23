package model

// ToolCall is a structured request from the LLM to invoke a named
// capability with arguments. IDs are unique per emitted call; the parser
// mints one when the LLM omits it.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is what a tool handler returns. Success=false implies Error is
// set and Data is absent.
type ToolResult struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
	Widgets []WidgetBlock `json:"widgets,omitempty"`
}

// ToolFailure builds a failed result.
func ToolFailure(message string) ToolResult {
	return ToolResult{Success: false, Error: message}
}

// ToolSuccess builds a successful result carrying data.
func ToolSuccess(data any, widgets ...WidgetBlock) ToolResult {
	return ToolResult{Success: true, Data: data, Widgets: widgets}
}
