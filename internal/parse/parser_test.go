package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_WellFormed(t *testing.T) {
	raw := `{
		"thinking": "the user wants unread mail",
		"tool_calls": [{"id": "call-1", "name": "fetch_messages", "arguments": {"unreadOnly": true}}],
		"response": "Checking your inbox."
	}`

	got := Parse(raw)

	assert.Equal(t, "the user wants unread mail", got.Thinking)
	require.Len(t, got.ToolCalls, 1)
	assert.Equal(t, "call-1", got.ToolCalls[0].ID)
	assert.Equal(t, "fetch_messages", got.ToolCalls[0].Name)
	assert.Equal(t, true, got.ToolCalls[0].Arguments["unreadOnly"])
	assert.Equal(t, "Checking your inbox.", got.Response)
}

func TestParse_CamelCaseToolCalls(t *testing.T) {
	raw := `{"toolCalls": [{"name": "fetch_events", "arguments": {}}], "response": "ok"}`

	got := Parse(raw)

	require.Len(t, got.ToolCalls, 1)
	assert.Equal(t, "fetch_events", got.ToolCalls[0].Name)
}

func TestParse_MintsMissingIDs(t *testing.T) {
	raw := `{"tool_calls": [
		{"name": "a", "arguments": {}},
		{"name": "b", "arguments": {}}
	], "response": ""}`

	got := Parse(raw)

	require.Len(t, got.ToolCalls, 2)
	assert.NotEmpty(t, got.ToolCalls[0].ID)
	assert.NotEmpty(t, got.ToolCalls[1].ID)
	assert.NotEqual(t, got.ToolCalls[0].ID, got.ToolCalls[1].ID)
	assert.Contains(t, got.ToolCalls[0].ID, "tool-")
}

func TestParse_FencedJSON(t *testing.T) {
	raw := "Here you go:\n```json\n{\"response\": \"All done.\"}\n```"

	got := Parse(raw)

	assert.Equal(t, "All done.", got.Response)
	assert.Empty(t, got.ToolCalls)
}

func TestParse_UnlabeledFence(t *testing.T) {
	raw := "```\n{\"response\": \"plain fence\"}\n```"

	assert.Equal(t, "plain fence", Parse(raw).Response)
}

func TestParse_TrailingCommas(t *testing.T) {
	raw := `{"response": "fixed", "tool_calls": [],}`

	assert.Equal(t, "fixed", Parse(raw).Response)
}

func TestParse_RawNewlinesInStrings(t *testing.T) {
	raw := "{\"response\": \"line one\nline two\"}"

	got := Parse(raw)

	assert.Equal(t, "line one\nline two", got.Response)
}

func TestParse_ResponseObjectKeys(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"summary", `{"response": {"summary": "the summary"}}`, "the summary"},
		{"text", `{"response": {"text": "the text"}}`, "the text"},
		{"message", `{"response": {"message": "the message"}}`, "the message"},
		{"summary wins over text", `{"response": {"text": "b", "summary": "a"}}`, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw).Response)
		})
	}
}

func TestParse_PureProse(t *testing.T) {
	raw := "I couldn't find anything matching that search."

	got := Parse(raw)

	assert.Equal(t, raw, got.Response)
	assert.Empty(t, got.ToolCalls)
}

func TestParse_ResponseFieldFromBrokenJSON(t *testing.T) {
	// Unterminated object: the brace slice has no closing brace pair that
	// parses, so the regex extractor recovers the response value.
	raw := `{"thinking": "...", "response": "Recovered text", "widgets": [`

	assert.Equal(t, "Recovered text", Parse(raw).Response)
}

func TestParse_EscapedQuotesInRecoveredResponse(t *testing.T) {
	raw := `{"response": "She said \"hello\" twice", "tool_calls": [`

	assert.Equal(t, `She said "hello" twice`, Parse(raw).Response)
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Equal(t, FallbackResponse, Parse("").Response)
}

func TestParse_FencedGarbage(t *testing.T) {
	// Nothing recoverable: a fence around an unterminated object.
	got := Parse("```json\n{broken\n```")
	assert.Equal(t, FallbackResponse, got.Response)
}

func TestParse_ProseAroundJSON(t *testing.T) {
	raw := "Sure thing!\n{\"not\": \"valid\", } oops }\nHope that helps."

	got := Parse(raw)

	// JSON is unusable; residue outside the brace region survives.
	assert.Contains(t, got.Response, "Sure thing!")
	assert.Contains(t, got.Response, "Hope that helps.")
}

func TestParse_Widgets(t *testing.T) {
	raw := `{
		"response": "Here is your meeting.",
		"widgets": [
			{"type": "calendar_event", "data": {"title": "Standup"}},
			{"type": "custom", "vdom": {"component": "text", "children": ["hi"]}}
		]
	}`

	got := Parse(raw)

	require.Len(t, got.Widgets, 2)
	assert.Equal(t, "calendar_event", string(got.Widgets[0].Type))
	assert.Equal(t, "Standup", got.Widgets[0].Data["title"])
	require.NotNil(t, got.Widgets[1].VDOM)
	assert.Equal(t, "text", got.Widgets[1].VDOM.Component)
	require.Len(t, got.Widgets[1].VDOM.Children, 1)
	assert.Equal(t, "hi", got.Widgets[1].VDOM.Children[0].Text)
}

func TestParse_MalformedWidgetSkipped(t *testing.T) {
	raw := `{
		"response": "ok",
		"widgets": [42, {"type": "form", "data": {"fields": []}}]
	}`

	got := Parse(raw)

	require.Len(t, got.Widgets, 1)
	assert.Equal(t, "form", string(got.Widgets[0].Type))
}

func TestParse_Idempotent(t *testing.T) {
	raw := `{"thinking": "t", "tool_calls": [{"id": "x", "name": "n", "arguments": {"a": "b"}}], "response": "r"}`

	first := Parse(raw)
	second := Parse(raw)

	assert.Equal(t, first, second)
}
