// Package parse extracts structured agent responses from free-form LLM
// output. It is deliberately forgiving: Parse never fails; it always
// produces a usable ParsedResponse.
package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/glancehq/assistant-platform/internal/model"
)

// FallbackResponse is returned when nothing textual can be recovered.
const FallbackResponse = "I've processed your request."

// ParsedResponse is the structured record extracted from LLM output.
type ParsedResponse struct {
	Thinking  string
	ToolCalls []model.ToolCall
	Response  string
	Widgets   []model.WidgetDescriptor
}

var toolCallCounter atomic.Uint64

type rawResponse struct {
	Thinking       string            `json:"thinking"`
	ToolCallsSnake []rawToolCall     `json:"tool_calls"`
	ToolCallsCamel []rawToolCall     `json:"toolCalls"`
	Response       json.RawMessage   `json:"response"`
	Widgets        []json.RawMessage `json:"widgets"`
}

type rawToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

var (
	fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

	// Properly escaped "response" string value.
	responseFieldRe = regexp.MustCompile(`"response"\s*:\s*"((?:[^"\\]|\\.)*)"`)

	// Lenient variant tolerating raw newlines inside the value.
	responseFieldLooseRe = regexp.MustCompile(`(?s)"response"\s*:\s*"(.*?)"\s*[,}\]]`)

	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// Parse turns raw LLM output into a ParsedResponse.
func Parse(raw string) ParsedResponse {
	body := stripFence(raw)

	slice, ok := braceSlice(body)
	if !ok {
		return ParsedResponse{Response: extractPlainText(raw)}
	}

	var rr rawResponse
	if err := json.Unmarshal([]byte(slice), &rr); err != nil {
		repaired := repair(slice)
		if err := json.Unmarshal([]byte(repaired), &rr); err != nil {
			return ParsedResponse{Response: extractPlainText(raw)}
		}
	}

	return normalize(rr, raw)
}

func normalize(rr rawResponse, raw string) ParsedResponse {
	out := ParsedResponse{Thinking: rr.Thinking}

	calls := rr.ToolCallsSnake
	if len(calls) == 0 {
		calls = rr.ToolCallsCamel
	}
	for _, c := range calls {
		if c.Name == "" {
			continue
		}
		id := c.ID
		if id == "" {
			id = fmt.Sprintf("tool-%d", toolCallCounter.Add(1))
		}
		args := c.Arguments
		if args == nil {
			args = map[string]any{}
		}
		out.ToolCalls = append(out.ToolCalls, model.ToolCall{ID: id, Name: c.Name, Arguments: args})
	}

	out.Response = normalizeResponseField(rr.Response, raw)

	for _, w := range rr.Widgets {
		var desc model.WidgetDescriptor
		if err := json.Unmarshal(w, &desc); err != nil {
			continue
		}
		out.Widgets = append(out.Widgets, desc)
	}

	return out
}

// normalizeResponseField handles the response arriving as a plain string
// or as an object carrying the text under a well-known key.
func normalizeResponseField(field json.RawMessage, raw string) string {
	if len(field) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(field, &s); err == nil {
		return s
	}

	var obj map[string]any
	if err := json.Unmarshal(field, &obj); err == nil {
		for _, key := range []string{"summary", "text", "message"} {
			if v, ok := obj[key].(string); ok && v != "" {
				return v
			}
		}
	}

	return extractPlainText(raw)
}

// stripFence unwraps a fenced code block if the output is wrapped in one.
func stripFence(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// braceSlice cuts from the first '{' to the matching last '}'.
func braceSlice(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// repair applies the two observed-misbehavior passes: trailing commas
// before a closer, and raw newlines inside string literals.
func repair(s string) string {
	s = escapeRawNewlines(s)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return s
}

// escapeRawNewlines escapes literal \n and \r occurring inside JSON string
// literals.
func escapeRawNewlines(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
				continue
			case r == '\r':
				b.WriteString(`\r`)
				continue
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// extractPlainText is the last rung of the ladder: pull the response value
// by regex, or strip structure and return the residue.
func extractPlainText(raw string) string {
	if m := responseFieldRe.FindStringSubmatch(raw); m != nil {
		if text := strings.TrimSpace(unescapeJSON(m[1])); text != "" {
			return text
		}
	}
	if m := responseFieldLooseRe.FindStringSubmatch(raw); m != nil {
		if text := strings.TrimSpace(unescapeJSON(m[1])); text != "" {
			return text
		}
	}

	residue := fenceRe.ReplaceAllString(raw, "")
	if start := strings.Index(residue, "{"); start >= 0 {
		if end := strings.LastIndex(residue, "}"); end > start {
			residue = residue[:start] + residue[end+1:]
		}
	}

	residue = strings.TrimSpace(residue)
	if residue == "" {
		return FallbackResponse
	}
	return residue
}

// unescapeJSON resolves the standard escapes found in regex-extracted
// string values.
func unescapeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				b.WriteRune(r)
			}
			continue
		}
		escaped = false
		switch r {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		case '"':
			b.WriteRune('"')
		case '\\':
			b.WriteRune('\\')
		case '/':
			b.WriteRune('/')
		default:
			b.WriteRune('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
