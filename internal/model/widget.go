package model

import "encoding/json"

// WidgetType identifies a predefined widget data schema.
type WidgetType string

const (
	WidgetEmailPreview  WidgetType = "email_preview"
	WidgetCalendarEvent WidgetType = "calendar_event"
	WidgetSearchResults WidgetType = "search_results"
	WidgetForm          WidgetType = "form"
	WidgetMeetingCard   WidgetType = "meeting_card"
	WidgetFlightCard    WidgetType = "flight_card"
	WidgetCustom        WidgetType = "custom"
)

// KnownWidgetType reports whether t is one of the predefined widget types
// (custom excluded).
func KnownWidgetType(t WidgetType) bool {
	switch t {
	case WidgetEmailPreview, WidgetCalendarEvent, WidgetSearchResults,
		WidgetForm, WidgetMeetingCard, WidgetFlightCard:
		return true
	}
	return false
}

// WidgetBlock is a typed UI descriptor the client renders. Predefined
// widgets carry a type-specific Data payload; custom widgets carry a VDOM
// tree instead.
type WidgetBlock struct {
	ID      string         `json:"id"`
	Type    WidgetType     `json:"type"`
	Data    map[string]any `json:"data,omitempty"`
	Actions []string       `json:"actions,omitempty"`
	VDOM    *VDOMNode      `json:"vdom,omitempty"`
}

// WidgetDescriptor is a widget as emitted by the LLM, before validation and
// id assignment.
type WidgetDescriptor struct {
	Type    WidgetType     `json:"type"`
	Data    map[string]any `json:"data,omitempty"`
	Actions []string       `json:"actions,omitempty"`
	VDOM    *VDOMNode      `json:"vdom,omitempty"`
}

// VDOMNode describes a UI fragment as a tree of whitelisted components.
// props.action marks interactive bindings.
type VDOMNode struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props,omitempty"`
	Children  []VDOMChild    `json:"children,omitempty"`
}

// VDOMChild is either a nested node or a text leaf.
type VDOMChild struct {
	Node *VDOMNode
	Text string
}

// UnmarshalJSON accepts either a string leaf or a node object.
func (c *VDOMChild) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.Node = nil
		return nil
	}
	var n VDOMNode
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	c.Node = &n
	return nil
}

// MarshalJSON emits the leaf string or the node object.
func (c VDOMChild) MarshalJSON() ([]byte, error) {
	if c.Node != nil {
		return json.Marshal(c.Node)
	}
	return json.Marshal(c.Text)
}
