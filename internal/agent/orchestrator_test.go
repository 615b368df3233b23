package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glancehq/assistant-platform/internal/conversation"
	"github.com/glancehq/assistant-platform/internal/llm"
	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/internal/prompt"
	"github.com/glancehq/assistant-platform/internal/stream"
	"github.com/glancehq/assistant-platform/internal/tool"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

// scriptedLLM replays canned responses in order, repeating the last one.
type scriptedLLM struct {
	mu          sync.Mutex
	responses   []string
	calls       int
	streamErr   error
	unavailable error
}

func (s *scriptedLLM) CompleteStream(ctx context.Context, req *llm.CompletionRequest, cb llm.StreamCallback) (*llm.CompletionResponse, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.mu.Unlock()

	if s.streamErr != nil {
		return nil, s.streamErr
	}
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	content := s.responses[i]
	if err := cb(content, 0); err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: content, Model: req.Model}, nil
}

func (s *scriptedLLM) Available(ctx context.Context) error { return s.unavailable }
func (s *scriptedLLM) Name() string                        { return "scripted" }
func (s *scriptedLLM) Models() []string                    { return nil }

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixture struct {
	orch  *Orchestrator
	llm   *scriptedLLM
	store *conversation.Store
}

func newFixture(t *testing.T, client *scriptedLLM, maxIterations int) fixture {
	t.Helper()
	log := logger.NewNop()

	registry := tool.NewRegistry(log)
	registry.Register(tool.Descriptor{
		Name:   "fetch_messages",
		Domain: tool.DomainEmail,
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		return model.ToolSuccess(
			[]map[string]any{{"subject": "hello"}},
			model.WidgetBlock{Type: model.WidgetEmailPreview, Data: map[string]any{"subject": "hello"}},
		), nil
	})
	registry.Register(tool.Descriptor{
		Name:   "slow_tool",
		Domain: tool.DomainEmail,
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		time.Sleep(30 * time.Millisecond)
		return model.ToolSuccess(
			"slow",
			model.WidgetBlock{Type: model.WidgetSearchResults, Data: map[string]any{"query": "slow"}},
		), nil
	})
	registry.Register(tool.Descriptor{
		Name:   "broken_tool",
		Domain: tool.DomainEmail,
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		return model.ToolResult{}, errors.New("backend down")
	})

	store := conversation.NewStore(50)
	orch := New(
		client,
		registry,
		tool.NewExecutor(registry, log),
		prompt.NewRouter(),
		store,
		prompt.NewContextBuilder(time.UTC, nil, log),
		NewWidgetGenerator(log),
		Config{MaxIterations: maxIterations, ContextWindowEntries: 10, LLMTimeout: time.Minute},
		log,
	)
	return fixture{orch: orch, llm: client, store: store}
}

func userRequest(conversationID, content string) *model.ChatRequest {
	return &model.ChatRequest{
		ConversationID: conversationID,
		Messages:       []model.Turn{{Role: model.RoleUser, Content: content}},
		SessionInfo:    &model.SessionInfo{Session: "tok", BaseURL: "https://mail.example.com"},
	}
}

func eventsOfType(events []model.StreamEvent, typ model.EventType) []model.StreamEvent {
	var out []model.StreamEvent
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func joinedText(events []model.StreamEvent) string {
	var b strings.Builder
	for _, e := range eventsOfType(events, model.EventTextDelta) {
		b.WriteString(e.Content)
	}
	return b.String()
}

func terminalCount(events []model.StreamEvent) int {
	n := 0
	for _, e := range events {
		if e.Terminal() {
			n++
		}
	}
	return n
}

func TestProcess_EmpathyPathNoTools(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"response": "I'm sorry you're under the weather. Anything I can take off your plate?"}`,
	}}
	f := newFixture(t, client, 5)
	sink := stream.NewCaptureSink()

	f.orch.Process(context.Background(), userRequest("c1", "not feeling well today"), sink)

	events := sink.Events()
	assert.Equal(t, 1, f.llm.callCount(), "no tool calls means exactly one LLM invocation")
	assert.Equal(t, 1, terminalCount(events))
	assert.Empty(t, eventsOfType(events, model.EventWidget))
	assert.Contains(t, joinedText(events), "under the weather")
	assert.Equal(t, model.EventDone, events[len(events)-1].Type)

	statuses := eventsOfType(events, model.EventStatus)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Thinking...", statuses[0].Status)
}

func TestProcess_ToolCallThenReply(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"tool_calls": [{"id": "call-1", "name": "fetch_messages", "arguments": {"unreadOnly": true}}], "response": ""}`,
		`{"response": "You have one unread email from hello."}`,
	}}
	f := newFixture(t, client, 5)
	sink := stream.NewCaptureSink()

	f.orch.Process(context.Background(), userRequest("c1", "any unread messages"), sink)

	events := sink.Events()
	assert.Equal(t, 2, f.llm.callCount())
	assert.Equal(t, 1, terminalCount(events))

	widgets := eventsOfType(events, model.EventWidget)
	require.Len(t, widgets, 1)
	assert.Equal(t, model.WidgetEmailPreview, widgets[0].Widget.Type)

	statuses := eventsOfType(events, model.EventStatus)
	require.Len(t, statuses, 2)
	assert.Equal(t, "Thinking...", statuses[0].Status)
	assert.Equal(t, "Processing tool results...", statuses[1].Status)

	assert.Contains(t, joinedText(events), "one unread email")

	// Conversation recorded both sides of the turn.
	all := f.store.All("c1")
	require.Len(t, all, 2)
	assert.Equal(t, model.RoleUser, all[0].Role)
	assert.Equal(t, model.RoleAssistant, all[1].Role)
}

func TestProcess_WidgetOrderFollowsCallOrder(t *testing.T) {
	// slow_tool is listed first and sleeps; its widget must still come
	// out first.
	client := &scriptedLLM{responses: []string{
		`{"tool_calls": [
			{"id": "call-slow", "name": "slow_tool", "arguments": {}},
			{"id": "call-fast", "name": "fetch_messages", "arguments": {}}
		], "response": ""}`,
		`{"response": "done"}`,
	}}
	f := newFixture(t, client, 5)
	sink := stream.NewCaptureSink()

	f.orch.Process(context.Background(), userRequest("c1", "check my email please"), sink)

	widgets := eventsOfType(sink.Events(), model.EventWidget)
	require.Len(t, widgets, 2)
	assert.Equal(t, model.WidgetSearchResults, widgets[0].Widget.Type)
	assert.Equal(t, model.WidgetEmailPreview, widgets[1].Widget.Type)
}

func TestProcess_SummarySuppressesToolWidgets(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"tool_calls": [{"id": "call-1", "name": "fetch_messages", "arguments": {}}], "response": ""}`,
		`{"response": "Summary: one email from hello."}`,
	}}
	f := newFixture(t, client, 5)
	sink := stream.NewCaptureSink()

	f.orch.Process(context.Background(), userRequest("c1", "give me a summary of today's emails"), sink)

	events := sink.Events()
	assert.Empty(t, eventsOfType(events, model.EventWidget))
	assert.Contains(t, joinedText(events), "Summary")
	assert.Equal(t, model.EventDone, events[len(events)-1].Type)
}

func TestProcess_ToolFailureFedBackNotSurfaced(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"tool_calls": [{"id": "call-1", "name": "broken_tool", "arguments": {}}], "response": ""}`,
		`{"response": "I couldn't reach your mailbox just now."}`,
	}}
	f := newFixture(t, client, 5)
	sink := stream.NewCaptureSink()

	f.orch.Process(context.Background(), userRequest("c1", "check email"), sink)

	events := sink.Events()
	// Tool errors are recovered locally, never stream-level errors.
	assert.Empty(t, eventsOfType(events, model.EventError))
	assert.Equal(t, model.EventDone, events[len(events)-1].Type)
	assert.Contains(t, joinedText(events), "couldn't reach")
}

func TestProcess_IterationCapApology(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"tool_calls": [{"id": "call-1", "name": "fetch_messages", "arguments": {}}], "response": ""}`,
	}}
	f := newFixture(t, client, 3)
	sink := stream.NewCaptureSink()

	f.orch.Process(context.Background(), userRequest("c1", "check email"), sink)

	events := sink.Events()
	assert.Equal(t, 3, f.llm.callCount(), "LLM invocations bounded by MaxIterations")
	assert.Empty(t, eventsOfType(events, model.EventError), "cap is not an error")
	assert.Equal(t, model.EventDone, events[len(events)-1].Type)
	assert.Contains(t, joinedText(events), "wasn't able to finish")
}

func TestProcess_EmptyPostToolResponseGetsFallback(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"tool_calls": [{"id": "call-1", "name": "fetch_messages", "arguments": {}}], "response": ""}`,
		`{"response": ""}`,
	}}
	f := newFixture(t, client, 5)
	sink := stream.NewCaptureSink()

	f.orch.Process(context.Background(), userRequest("c1", "check email"), sink)

	assert.Contains(t, joinedText(sink.Events()), "couldn't find any matching results")
}

func TestProcess_ValidationError(t *testing.T) {
	client := &scriptedLLM{responses: []string{`{"response": "x"}`}}
	f := newFixture(t, client, 5)
	sink := stream.NewCaptureSink()

	req := &model.ChatRequest{Messages: []model.Turn{{Role: model.RoleAssistant, Content: "hi"}}}
	f.orch.Process(context.Background(), req, sink)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventError, events[0].Type)
	assert.Equal(t, model.CodeValidationError, events[0].Code)
	assert.Equal(t, 0, f.llm.callCount())
}

func TestProcess_LLMUnavailable(t *testing.T) {
	client := &scriptedLLM{unavailable: errors.New("connection refused")}
	f := newFixture(t, client, 5)
	sink := stream.NewCaptureSink()

	f.orch.Process(context.Background(), userRequest("c1", "hello"), sink)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.CodeLLMUnavailable, events[0].Code)
}

func TestProcess_LLMStreamError(t *testing.T) {
	client := &scriptedLLM{streamErr: errors.New("stream reset")}
	f := newFixture(t, client, 5)
	sink := stream.NewCaptureSink()

	f.orch.Process(context.Background(), userRequest("c1", "hello"), sink)

	events := sink.Events()
	assert.Equal(t, 1, terminalCount(events))
	last := events[len(events)-1]
	assert.Equal(t, model.EventError, last.Type)
	assert.Equal(t, model.CodeLLMError, last.Code)
}

func TestProcess_LLMWidgetsValidatedAndEmitted(t *testing.T) {
	client := &scriptedLLM{responses: []string{
		`{"response": "Here's a card.", "widgets": [
			{"type": "meeting_card", "data": {"title": "1:1"}},
			{"type": "bogus", "data": {"x": 1}}
		]}`,
	}}
	f := newFixture(t, client, 5)
	sink := stream.NewCaptureSink()

	f.orch.Process(context.Background(), userRequest("c1", "hello"), sink)

	widgets := eventsOfType(sink.Events(), model.EventWidget)
	require.Len(t, widgets, 1)
	assert.Equal(t, model.WidgetMeetingCard, widgets[0].Widget.Type)
}

func TestProcess_HistoryOmittedForStandaloneQuery(t *testing.T) {
	client := &scriptedLLM{responses: []string{`{"response": "ok"}`}}
	f := newFixture(t, client, 5)

	// Seed prior history.
	f.store.Append("c1", model.Entry{Role: model.RoleUser, Content: "earlier question", Timestamp: time.Now()})
	f.store.Append("c1", model.Entry{Role: model.RoleAssistant, Content: "earlier answer", Timestamp: time.Now()})

	captured := &messageCapturingLLM{inner: client}
	orch := newFixtureWithClient(t, captured)
	orch.orch.store = f.store

	sink := stream.NewCaptureSink()
	orch.orch.Process(context.Background(), userRequest("c1", "find invoice"), sink)

	require.NotEmpty(t, captured.messages)
	for _, m := range captured.messages {
		assert.NotEqual(t, "earlier question", m.Content, "standalone query must omit history")
	}
}

func TestProcess_HistoryIncludedForFollowUp(t *testing.T) {
	client := &scriptedLLM{responses: []string{`{"response": "Dana is organizing it."}`}}
	f := newFixture(t, client, 5)
	f.store.Append("c1", model.Entry{Role: model.RoleAssistant, Content: "The design sync is at 2 PM.", Timestamp: time.Now()})

	captured := &messageCapturingLLM{inner: client}
	orch := newFixtureWithClient(t, captured)
	orch.orch.store = f.store

	sink := stream.NewCaptureSink()
	orch.orch.Process(context.Background(), userRequest("c1", "who's organizing it?"), sink)

	var sawHistory bool
	for _, m := range captured.messages {
		if m.Content == "The design sync is at 2 PM." {
			sawHistory = true
		}
	}
	assert.True(t, sawHistory, "follow-up query must include history")
}

// messageCapturingLLM records the message list of the first stream call.
type messageCapturingLLM struct {
	inner    *scriptedLLM
	messages []llm.ChatMessage
}

func (c *messageCapturingLLM) CompleteStream(ctx context.Context, req *llm.CompletionRequest, cb llm.StreamCallback) (*llm.CompletionResponse, error) {
	if c.messages == nil {
		c.messages = req.Messages
	}
	return c.inner.CompleteStream(ctx, req, cb)
}

func (c *messageCapturingLLM) Available(ctx context.Context) error { return c.inner.Available(ctx) }
func (c *messageCapturingLLM) Name() string                        { return c.inner.Name() }
func (c *messageCapturingLLM) Models() []string                    { return c.inner.Models() }

func newFixtureWithClient(t *testing.T, client llm.Client) fixture {
	t.Helper()
	log := logger.NewNop()
	registry := tool.NewRegistry(log)
	store := conversation.NewStore(50)
	orch := New(
		client,
		registry,
		tool.NewExecutor(registry, log),
		prompt.NewRouter(),
		store,
		prompt.NewContextBuilder(time.UTC, nil, log),
		NewWidgetGenerator(log),
		Config{MaxIterations: 5, ContextWindowEntries: 10, LLMTimeout: time.Minute},
		log,
	)
	return fixture{orch: orch, store: store}
}
