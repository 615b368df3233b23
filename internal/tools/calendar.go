package tools

import (
	"context"

	"github.com/glancehq/assistant-platform/internal/apiclient"
	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/internal/tool"
)

// RegisterCalendarTools adds the calendar tool set to the registry.
func RegisterCalendarTools(reg *tool.Registry, cal *apiclient.CalendarClient) {
	reg.Register(tool.Descriptor{
		Name:        "fetch_events",
		Description: "List calendar events in a time range.",
		Domain:      tool.DomainCalendar,
		Kind:        tool.KindAPI,
		Parameters: map[string]tool.ParamSpec{
			"start":      {Type: "string", Description: "Range start, RFC 3339. Defaults to the start of today."},
			"end":        {Type: "string", Description: "Range end, RFC 3339. Defaults to the end of today."},
			"calendarId": {Type: "string", Description: "Limit to one calendar."},
		},
		Hints: tool.UsageHints{
			WhenToUse: "The user asks what is on their calendar or schedule.",
			Output:    "both",
		},
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		events, err := cal.FetchEvents(ctx, apiclient.FetchEventsParams{
			CalendarID: stringArg(args, "calendarId"),
			Start:      stringArg(args, "start"),
			End:        stringArg(args, "end"),
		})
		if err != nil {
			return model.ToolResult{}, err
		}
		return model.ToolSuccess(eventData(events), eventWidgets(events)...), nil
	})

	reg.Register(tool.Descriptor{
		Name:        "create_event",
		Description: "Create a calendar event. Only call this when the user explicitly asked to schedule something.",
		Domain:      tool.DomainCalendar,
		Kind:        tool.KindAPI,
		Parameters: map[string]tool.ParamSpec{
			"title":       {Type: "string", Description: "Event title."},
			"start":       {Type: "string", Description: "Start time, RFC 3339."},
			"end":         {Type: "string", Description: "End time, RFC 3339. Defaults to one hour after start."},
			"description": {Type: "string", Description: "Event description."},
			"location":    {Type: "string", Description: "Event location."},
			"attendees":   {Type: "array", Description: "Attendee email addresses.", Items: &tool.ParamSpec{Type: "string"}},
			"calendarId":  {Type: "string", Description: "Target calendar; the primary calendar when omitted."},
		},
		Required: []string{"title", "start"},
		Hints: tool.UsageHints{
			WhenNotToUse: "Details are missing; ask the user rather than guessing.",
			Output:       "both",
		},
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		event, err := cal.CreateEvent(ctx, apiclient.CreateEventParams{
			CalendarID:  stringArg(args, "calendarId"),
			Title:       stringArg(args, "title"),
			Description: stringArg(args, "description"),
			Location:    stringArg(args, "location"),
			Start:       stringArg(args, "start"),
			End:         stringArg(args, "end"),
			Attendees:   stringSliceArg(args, "attendees"),
		})
		if err != nil {
			return model.ToolResult{}, err
		}
		events := []apiclient.Event{*event}
		return model.ToolSuccess(eventData(events), eventWidgets(events)...), nil
	})

	reg.Register(tool.Descriptor{
		Name:        "list_calendars",
		Description: "List the user's calendars.",
		Domain:      tool.DomainCalendar,
		Kind:        tool.KindAPI,
		Hints: tool.UsageHints{
			WhenToUse: "The user asks which calendars they have, or a calendar id is needed for another call.",
			Output:    "text",
		},
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		calendars, err := cal.ListCalendars(ctx)
		if err != nil {
			return model.ToolResult{}, err
		}

		data := make([]map[string]any, 0, len(calendars))
		for _, c := range calendars {
			if c.Attr.Deleted() || c.ListAttr.Hidden() {
				continue
			}
			data = append(data, map[string]any{
				"id":       c.ID,
				"name":     c.Name,
				"primary":  c.Attr.Primary(),
				"selected": c.ListAttr.Selected(),
				"ical":     c.Attr.ICal(),
			})
		}
		return model.ToolSuccess(data), nil
	})
}

func eventData(events []apiclient.Event) []map[string]any {
	out := make([]map[string]any, 0, len(events))
	for _, e := range events {
		if e.Attr.Deleted() {
			continue
		}

		attendees := make([]map[string]any, len(e.Attendees))
		for i, a := range e.Attendees {
			attendees[i] = map[string]any{
				"email":     a.Email,
				"name":      a.Name,
				"response":  a.Response,
				"optional":  a.Attr.Optional(),
				"organizer": a.Attr.Organizer(),
			}
		}

		out = append(out, map[string]any{
			"id":          e.ID,
			"title":       e.Title,
			"start":       e.Start,
			"end":         e.End,
			"location":    e.Location,
			"meetingLink": e.MeetingLink,
			"attendees":   attendees,
			"flags":       e.Flags(),
		})
	}
	return out
}

func eventWidgets(events []apiclient.Event) []model.WidgetBlock {
	widgets := make([]model.WidgetBlock, 0, len(events))
	for _, e := range events {
		if e.Attr.Deleted() {
			continue
		}
		widgets = append(widgets, model.WidgetBlock{
			Type: model.WidgetCalendarEvent,
			Data: map[string]any{
				"eventId":     e.ID,
				"title":       e.Title,
				"start":       e.Start,
				"end":         e.End,
				"location":    e.Location,
				"meetingLink": e.MeetingLink,
				"allDay":      e.Attr.AllDay(),
				"recurring":   e.Attr.Recurring(),
			},
		})
	}
	return widgets
}
