// Package apiclient provides typed HTTP clients for the mail and calendar
// services, including the bitset attribute decodings their wire formats
// use.
package apiclient

// MessageState is the mail message state bitset.
type MessageState uint32

// Message state bits.
const (
	MessageUnread MessageState = 1 << iota
	MessageStarred
	MessageDraft
	MessageHasAttachment
	MessageTracked
)

func (s MessageState) Unread() bool        { return s&MessageUnread != 0 }
func (s MessageState) Starred() bool       { return s&MessageStarred != 0 }
func (s MessageState) Draft() bool         { return s&MessageDraft != 0 }
func (s MessageState) HasAttachment() bool { return s&MessageHasAttachment != 0 }
func (s MessageState) Tracked() bool       { return s&MessageTracked != 0 }

// CalendarListAttr is the calendar-list entry attribute bitset.
type CalendarListAttr uint32

const (
	CalendarListHidden CalendarListAttr = 1 << iota
	CalendarListSelected
)

func (a CalendarListAttr) Hidden() bool   { return a&CalendarListHidden != 0 }
func (a CalendarListAttr) Selected() bool { return a&CalendarListSelected != 0 }

// CalendarAttr is the calendar attribute bitset.
type CalendarAttr uint32

const (
	CalendarDeleted CalendarAttr = 1 << iota
	CalendarPrimary
	CalendarICal
)

func (a CalendarAttr) Deleted() bool { return a&CalendarDeleted != 0 }
func (a CalendarAttr) Primary() bool { return a&CalendarPrimary != 0 }
func (a CalendarAttr) ICal() bool    { return a&CalendarICal != 0 }

// EventAttr is the event attribute bitset.
type EventAttr uint32

const (
	EventRecurring        EventAttr = 1 << 0
	EventAllDay           EventAttr = 1 << 1
	EventGuestsMayModify  EventAttr = 1 << 2
	EventGuestsMayInvite  EventAttr = 1 << 3
	EventGuestsMaySeeList EventAttr = 1 << 4
	EventDeleted          EventAttr = 1 << 5
	EventExternal         EventAttr = 1 << 8
	EventParentSecondary  EventAttr = 1 << 9
	EventParent           EventAttr = 1 << 10
	EventICal             EventAttr = 1 << 13
	EventAppointment      EventAttr = 1 << 14
)

func (a EventAttr) Recurring() bool        { return a&EventRecurring != 0 }
func (a EventAttr) AllDay() bool           { return a&EventAllDay != 0 }
func (a EventAttr) GuestsMayModify() bool  { return a&EventGuestsMayModify != 0 }
func (a EventAttr) GuestsMayInvite() bool  { return a&EventGuestsMayInvite != 0 }
func (a EventAttr) GuestsMaySeeList() bool { return a&EventGuestsMaySeeList != 0 }
func (a EventAttr) Deleted() bool          { return a&EventDeleted != 0 }
func (a EventAttr) External() bool         { return a&EventExternal != 0 }
func (a EventAttr) ParentSecondary() bool  { return a&EventParentSecondary != 0 }
func (a EventAttr) ParentEvent() bool      { return a&EventParent != 0 }
func (a EventAttr) ICal() bool             { return a&EventICal != 0 }
func (a EventAttr) Appointment() bool      { return a&EventAppointment != 0 }

// AttendeeAttr is the attendee attribute bitset.
type AttendeeAttr uint32

const (
	AttendeeOptional AttendeeAttr = 1 << iota
	AttendeeOrganizer
)

func (a AttendeeAttr) Optional() bool  { return a&AttendeeOptional != 0 }
func (a AttendeeAttr) Organizer() bool { return a&AttendeeOrganizer != 0 }
