package model

// EventType tags an outbound stream event.
type EventType string

const (
	EventTextDelta EventType = "text_delta"
	EventWidget    EventType = "widget"
	EventStatus    EventType = "status"
	EventDone      EventType = "done"
	EventError     EventType = "error"
)

// Error codes surfaced on the event stream.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeLLMUnavailable  = "LLM_UNAVAILABLE"
	CodeLLMError        = "LLM_ERROR"
	CodeAgentError      = "AGENT_ERROR"
)

// StreamEvent is the tagged union written to the event stream. Exactly the
// fields relevant to Type are populated.
type StreamEvent struct {
	Type    EventType    `json:"type"`
	Content string       `json:"content,omitempty"`
	Widget  *WidgetBlock `json:"widget,omitempty"`
	Status  string       `json:"status,omitempty"`
	Message string       `json:"message,omitempty"`
	Code    string       `json:"code,omitempty"`
}

// Terminal reports whether the event ends the turn.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// TextDeltaEvent builds a text_delta event.
func TextDeltaEvent(content string) StreamEvent {
	return StreamEvent{Type: EventTextDelta, Content: content}
}

// WidgetEvent builds a widget event.
func WidgetEvent(w WidgetBlock) StreamEvent {
	return StreamEvent{Type: EventWidget, Widget: &w}
}

// StatusEvent builds a status event.
func StatusEvent(status string) StreamEvent {
	return StreamEvent{Type: EventStatus, Status: status}
}

// DoneEvent builds the terminal done event.
func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone}
}

// ErrorEvent builds the terminal error event.
func ErrorEvent(message, code string) StreamEvent {
	return StreamEvent{Type: EventError, Message: message, Code: code}
}
