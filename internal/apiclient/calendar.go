package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/glancehq/assistant-platform/pkg/logger"
)

// CalendarClient talks to the calendar service. Unlike mail, the base URL
// is fixed per environment, not per session. Every call advertises iCal
// support.
type CalendarClient struct {
	httpClient
	baseURL string
}

// NewCalendarClient creates a calendar client over the environment base
// URL.
func NewCalendarClient(baseURL string, log *logger.Logger) *CalendarClient {
	return &CalendarClient{
		httpClient: newHTTPClient(log),
		baseURL:    baseURL,
	}
}

// Calendar is one calendar as the service returns it.
type Calendar struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Attr     CalendarAttr     `json:"attr"`
	ListAttr CalendarListAttr `json:"listAttr"`
}

// Attendee is one event attendee.
type Attendee struct {
	Email    string       `json:"email"`
	Name     string       `json:"name,omitempty"`
	Response string       `json:"response,omitempty"`
	Attr     AttendeeAttr `json:"attr"`
}

// Event is one calendar event.
type Event struct {
	ID          string     `json:"id"`
	CalendarID  string     `json:"calendarId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	MeetingLink string     `json:"meetingLink,omitempty"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	Attendees   []Attendee `json:"attendees,omitempty"`
	Attr        EventAttr  `json:"attr"`
}

// Flags decodes the event attribute bitset into named booleans.
func (e Event) Flags() map[string]bool {
	return map[string]bool{
		"recurring":   e.Attr.Recurring(),
		"allDay":      e.Attr.AllDay(),
		"external":    e.Attr.External(),
		"appointment": e.Attr.Appointment(),
		"deleted":     e.Attr.Deleted(),
	}
}

// Organizer returns the organizing attendee, if present.
func (e Event) Organizer() (Attendee, bool) {
	for _, a := range e.Attendees {
		if a.Attr.Organizer() {
			return a, true
		}
	}
	return Attendee{}, false
}

var icalOpts = requestOptions{icalSupport: true}

// ListCalendars lists the user's calendars.
func (c *CalendarClient) ListCalendars(ctx context.Context) ([]Calendar, error) {
	endpoint := joinURL(c.baseURL, "/api/calendar/calendars")

	var resp struct {
		Calendars []Calendar `json:"calendars"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp, icalOpts); err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	return resp.Calendars, nil
}

// FetchEventsParams scopes an event listing.
type FetchEventsParams struct {
	CalendarID string
	Start      string // RFC 3339
	End        string // RFC 3339
}

// FetchEvents lists events in a time range.
func (c *CalendarClient) FetchEvents(ctx context.Context, params FetchEventsParams) ([]Event, error) {
	q := url.Values{}
	if params.CalendarID != "" {
		q.Set("calendarId", params.CalendarID)
	}
	if params.Start != "" {
		q.Set("start", params.Start)
	}
	if params.End != "" {
		q.Set("end", params.End)
	}

	endpoint := joinURL(c.baseURL, "/api/calendar/events")
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var resp struct {
		Events []Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp, icalOpts); err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	return resp.Events, nil
}

// CreateEventParams describes a new event.
type CreateEventParams struct {
	CalendarID  string   `json:"calendarId,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
}

// CreateEvent creates an event and returns it as stored.
func (c *CalendarClient) CreateEvent(ctx context.Context, params CreateEventParams) (*Event, error) {
	endpoint := joinURL(c.baseURL, "/api/calendar/events")

	var event Event
	if err := c.doJSON(ctx, http.MethodPost, endpoint, params, &event, icalOpts); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}
