package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageState(t *testing.T) {
	s := MessageState(0b10101) // unread, draft, tracked

	assert.True(t, s.Unread())
	assert.False(t, s.Starred())
	assert.True(t, s.Draft())
	assert.False(t, s.HasAttachment())
	assert.True(t, s.Tracked())
}

func TestCalendarListAttr(t *testing.T) {
	a := CalendarListAttr(0b10)

	assert.False(t, a.Hidden())
	assert.True(t, a.Selected())
}

func TestCalendarAttr(t *testing.T) {
	a := CalendarAttr(0b110)

	assert.False(t, a.Deleted())
	assert.True(t, a.Primary())
	assert.True(t, a.ICal())
}

func TestEventAttr(t *testing.T) {
	a := EventRecurring | EventGuestsMayInvite | EventExternal | EventICal | EventAppointment

	assert.True(t, a.Recurring())
	assert.False(t, a.AllDay())
	assert.False(t, a.GuestsMayModify())
	assert.True(t, a.GuestsMayInvite())
	assert.False(t, a.GuestsMaySeeList())
	assert.False(t, a.Deleted())
	assert.True(t, a.External())
	assert.False(t, a.ParentSecondary())
	assert.False(t, a.ParentEvent())
	assert.True(t, a.ICal())
	assert.True(t, a.Appointment())
}

func TestEventAttr_HighBitsPositions(t *testing.T) {
	// The high bits are sparse; pin their positions.
	assert.Equal(t, EventAttr(1<<8), EventExternal)
	assert.Equal(t, EventAttr(1<<9), EventParentSecondary)
	assert.Equal(t, EventAttr(1<<10), EventParent)
	assert.Equal(t, EventAttr(1<<13), EventICal)
	assert.Equal(t, EventAttr(1<<14), EventAppointment)
}

func TestAttendeeAttr(t *testing.T) {
	a := AttendeeAttr(0b11)

	assert.True(t, a.Optional())
	assert.True(t, a.Organizer())
}

func TestEventOrganizer(t *testing.T) {
	e := Event{Attendees: []Attendee{
		{Email: "a@example.com"},
		{Email: "b@example.com", Attr: AttendeeOrganizer},
	}}

	org, ok := e.Organizer()
	assert.True(t, ok)
	assert.Equal(t, "b@example.com", org.Email)

	_, ok = Event{}.Organizer()
	assert.False(t, ok)
}
