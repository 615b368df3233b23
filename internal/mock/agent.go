// Package mock provides a scripted scenario engine that stands in for the
// orchestrator in demos (UseMockAgent). Keyword matching picks a canned
// scenario; the first one wins; a fixed demo reply covers the rest.
package mock

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/internal/stream"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

type scenario struct {
	keywords []string
	status   string
	response string
	widgets  []model.WidgetBlock
}

// Agent replays canned scenarios over the event stream.
type Agent struct {
	scenarios []scenario
	delay     time.Duration
	log       *logger.Logger
}

// New creates a mock agent with the built-in scenario set.
func New(delay time.Duration, log *logger.Logger) *Agent {
	return &Agent{
		scenarios: builtinScenarios(),
		delay:     delay,
		log:       log,
	}
}

// Process streams the matching scenario and closes with done.
func (a *Agent) Process(ctx context.Context, req *model.ChatRequest, sink stream.Sink) {
	last, ok := req.LastUserTurn()
	if !ok {
		sink.Emit(model.ErrorEvent("the last message must be a user message", model.CodeValidationError))
		return
	}

	sink.Emit(model.StatusEvent("Thinking..."))

	sc := a.match(last.Content)
	if sc.status != "" {
		sink.Emit(model.StatusEvent(sc.status))
	}

	for _, w := range sc.widgets {
		sink.Emit(model.WidgetEvent(w))
	}

	for _, token := range tokenRe.FindAllString(sc.response, -1) {
		sink.Emit(model.TextDeltaEvent(token))
		if a.delay > 0 {
			time.Sleep(a.delay)
		}
	}

	sink.Emit(model.DoneEvent())
}

var tokenRe = regexp.MustCompile(`\s*\S+\s*`)

func (a *Agent) match(query string) scenario {
	q := strings.ToLower(query)
	for _, sc := range a.scenarios {
		for _, kw := range sc.keywords {
			if strings.Contains(q, kw) {
				return sc
			}
		}
	}
	return scenario{
		response: "This is a demo environment. Try asking about unread emails or today's calendar.",
	}
}

func builtinScenarios() []scenario {
	return []scenario{
		{
			keywords: []string{"unread", "new email", "new mail"},
			status:   "Checking your inbox...",
			response: "You have two unread emails. Dana Li sent the Q3 planning deck, and billing@acmecloud.example flagged an invoice due Friday.",
			widgets: []model.WidgetBlock{
				{
					ID:      "mock-widget-1",
					Type:    model.WidgetEmailPreview,
					Actions: []string{"reply", "archive", "open"},
					Data: map[string]any{
						"messageId": "msg-demo-1",
						"from":      "dana.li@example.com",
						"subject":   "Q3 planning deck",
						"snippet":   "Attaching the deck ahead of Thursday's review...",
						"unread":    true,
					},
				},
				{
					ID:      "mock-widget-2",
					Type:    model.WidgetEmailPreview,
					Actions: []string{"reply", "archive", "open"},
					Data: map[string]any{
						"messageId": "msg-demo-2",
						"from":      "billing@acmecloud.example",
						"subject":   "Invoice #88412 due Friday",
						"snippet":   "Your July invoice is ready...",
						"unread":    true,
					},
				},
			},
		},
		{
			keywords: []string{"calendar", "meeting", "schedule"},
			status:   "Looking at your calendar...",
			response: "You have one meeting today: the design sync at 2:00 PM with four attendees.",
			widgets: []model.WidgetBlock{
				{
					ID:      "mock-widget-3",
					Type:    model.WidgetCalendarEvent,
					Actions: []string{"join", "decline", "details"},
					Data: map[string]any{
						"eventId":     "evt-demo-1",
						"title":       "Design sync",
						"start":       "14:00",
						"end":         "14:45",
						"meetingLink": "https://meet.example.com/design-sync",
					},
				},
			},
		},
	}
}
