package mock

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/internal/stream"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

func run(t *testing.T, query string) []model.StreamEvent {
	t.Helper()
	a := New(0, logger.NewNop())
	sink := stream.NewCaptureSink()
	a.Process(context.Background(), &model.ChatRequest{
		Messages: []model.Turn{{Role: model.RoleUser, Content: query}},
	}, sink)
	return sink.Events()
}

func TestMockAgent_UnreadScenario(t *testing.T) {
	events := run(t, "any unread messages?")

	var widgets int
	var text strings.Builder
	for _, e := range events {
		switch e.Type {
		case model.EventWidget:
			widgets++
		case model.EventTextDelta:
			text.WriteString(e.Content)
		}
	}

	assert.Equal(t, 2, widgets)
	assert.Contains(t, text.String(), "two unread emails")
	assert.Equal(t, model.EventDone, events[len(events)-1].Type)
}

func TestMockAgent_FallbackScenario(t *testing.T) {
	events := run(t, "what is the weather")

	var text strings.Builder
	for _, e := range events {
		if e.Type == model.EventTextDelta {
			text.WriteString(e.Content)
		}
	}
	assert.Contains(t, text.String(), "demo environment")
}

func TestMockAgent_RequiresUserTurn(t *testing.T) {
	a := New(0, logger.NewNop())
	sink := stream.NewCaptureSink()
	a.Process(context.Background(), &model.ChatRequest{
		Messages: []model.Turn{{Role: model.RoleAssistant, Content: "hi"}},
	}, sink)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.CodeValidationError, events[0].Code)
}
