package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

func TestFromToolResults_OrderAndIDs(t *testing.T) {
	g := NewWidgetGenerator(logger.NewNop())

	results := map[string]model.ToolResult{
		"b": {Success: true, Widgets: []model.WidgetBlock{
			{Type: model.WidgetCalendarEvent, Data: map[string]any{"title": "sync"}},
		}},
		"a": {Success: true, Widgets: []model.WidgetBlock{
			{Type: model.WidgetEmailPreview, Data: map[string]any{"subject": "hi"}},
		}},
		"c": {Success: false, Error: "failed", Widgets: []model.WidgetBlock{
			{Type: model.WidgetEmailPreview, Data: map[string]any{"subject": "never"}},
		}},
	}

	got := g.FromToolResults([]string{"a", "b", "c"}, results)

	// Failed results contribute nothing; order follows call order, not
	// map order.
	require.Len(t, got, 2)
	assert.Equal(t, model.WidgetEmailPreview, got[0].Type)
	assert.Equal(t, model.WidgetCalendarEvent, got[1].Type)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestFromToolResults_DefaultActions(t *testing.T) {
	g := NewWidgetGenerator(logger.NewNop())

	results := map[string]model.ToolResult{
		"a": {Success: true, Widgets: []model.WidgetBlock{
			{Type: model.WidgetEmailPreview, Data: map[string]any{}},
		}},
	}

	got := g.FromToolResults([]string{"a"}, results)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"reply", "archive", "open"}, got[0].Actions)
}

func TestFromLLM_PredefinedWithDefaults(t *testing.T) {
	g := NewWidgetGenerator(logger.NewNop())

	got := g.FromLLM([]model.WidgetDescriptor{
		{Type: model.WidgetCalendarEvent, Data: map[string]any{
			"title":       "standup",
			"meetingLink": "https://meet.example.com/x",
		}},
		{Type: model.WidgetCalendarEvent, Data: map[string]any{"title": "focus block"}},
	})

	require.Len(t, got, 2)
	assert.Equal(t, []string{"join", "decline", "details"}, got[0].Actions)
	assert.Equal(t, []string{"accept", "decline", "details"}, got[1].Actions)
}

func TestFromLLM_DropsInvalid(t *testing.T) {
	g := NewWidgetGenerator(logger.NewNop())

	got := g.FromLLM([]model.WidgetDescriptor{
		{Type: "unknown_type", Data: map[string]any{"x": 1}},
		{Type: model.WidgetForm}, // predefined without data
		{Type: model.WidgetCustom, VDOM: &model.VDOMNode{Component: "script"}}, // not whitelisted
		{Type: model.WidgetForm, Data: map[string]any{"fields": []any{}}},
	})

	require.Len(t, got, 1)
	assert.Equal(t, model.WidgetForm, got[0].Type)
	assert.Equal(t, []string{"submit", "cancel"}, got[0].Actions)
}

func TestFromLLM_CustomVDOM(t *testing.T) {
	g := NewWidgetGenerator(logger.NewNop())

	vdom := &model.VDOMNode{
		Component: "container",
		Children: []model.VDOMChild{
			{Node: &model.VDOMNode{
				Component: "button",
				Props:     map[string]any{"action": "confirm"},
				Children:  []model.VDOMChild{{Text: "Confirm"}},
			}},
			{Text: "or cancel"},
		},
	}

	got := g.FromLLM([]model.WidgetDescriptor{{Type: model.WidgetCustom, VDOM: vdom}})

	require.Len(t, got, 1)
	assert.Equal(t, model.WidgetCustom, got[0].Type)
	assert.Same(t, vdom, got[0].VDOM)
}

func TestFromLLM_NestedInvalidComponentRejected(t *testing.T) {
	g := NewWidgetGenerator(logger.NewNop())

	vdom := &model.VDOMNode{
		Component: "container",
		Children: []model.VDOMChild{
			{Node: &model.VDOMNode{Component: "iframe"}},
		},
	}

	assert.Empty(t, g.FromLLM([]model.WidgetDescriptor{{Type: model.WidgetCustom, VDOM: vdom}}))
}
