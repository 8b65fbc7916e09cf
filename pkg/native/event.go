package native

// Event is a native appointment with its optional fields resolved once at
// the provider boundary. Timestamps keep the provider's textual form; the
// engine parses them.
//
// An empty string means the field is absent. Enum fields are nil when the
// provider did not expose them.
type Event struct {
	ID      string
	Subject string

	// Start and End are UTC wall-clock times in native text form.
	Start string
	End   string
	// DurationMinutes takes precedence over End when positive.
	DurationMinutes int
	AllDay          bool

	Body       string
	Location   string
	Organizer  string
	Categories string

	Busy       *BusyStatus
	Meeting    *MeetingStatus
	Importance *Importance

	// Semicolon-delimited attendee lists.
	RequiredAttendees string
	OptionalAttendees string

	Recurring bool
	State     RecurrenceState
	Pattern   *RecurrencePattern

	// Created and Modified are local times in native text form.
	Created  string
	Modified string
}

// RecurrencePattern returns the event's pattern, or nil unless the event is
// a recurring master.
func (e *Event) RecurrencePattern() *RecurrencePattern {
	if e == nil || !e.Recurring || e.State != Master {
		return nil
	}
	return e.Pattern
}

// IsMaster reports whether the event defines a recurring series.
func (e *Event) IsMaster() bool {
	return e != nil && e.Recurring && e.State == Master
}

type RecurrencePattern struct {
	Type     RecurrenceType
	Interval int

	// End policy. At most one of NoEndDate, Occurrences > 0 and
	// PatternEndDate is meaningful; NoEndDate wins when set.
	NoEndDate      bool
	Occurrences    int
	PatternEndDate string
	// EndTime carries the time of day applied to PatternEndDate.
	EndTime string

	DaysOfWeek  DayOfWeek
	DayOfMonth  int
	MonthOfYear int

	Exceptions []RecurrenceException
}

type RecurrenceException struct {
	// OriginalDate is the date of the replaced occurrence in the master's
	// pattern. Only its calendar date is significant.
	OriginalDate string
	Deleted      bool
	Item         *Event
}

// Override returns the replacing appointment, or nil for a deleted
// occurrence.
func (x RecurrenceException) Override() *Event {
	if x.Deleted {
		return nil
	}
	return x.Item
}
