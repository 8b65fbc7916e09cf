package native

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Textual layouts used by the automation object model.
const (
	DateTimeFormat = "01/02/2006 15:04"
	DateFormat     = "01/02/2006"
)

// FormatDateTime renders t the way the provider exposes timestamps. Seconds
// are dropped.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeFormat)
}

func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// EventSpec describes a synthetic appointment. It is the inverse direction
// of the translation engine and exists to build test data and fixtures.
type EventSpec struct {
	// ID defaults to a random UUID.
	ID      string
	Subject string

	Start time.Time
	End   time.Time
	// Duration wins over End when positive. It is truncated to minutes.
	Duration time.Duration
	AllDay   bool

	// Created defaults to Start, Modified to Created.
	Created  time.Time
	Modified time.Time
	// Location used for the local timestamps (Created, Modified). Defaults
	// to UTC.
	Zone *time.Location

	Body       string
	Organizer  string
	Location   string
	Categories string

	// Busy defaults to free, Meeting to received and Importance to normal.
	Busy       *BusyStatus
	Meeting    *MeetingStatus
	Importance *Importance

	RequiredAttendees []string
	OptionalAttendees []string

	Recurring bool
	State     RecurrenceState
	Pattern   *RecurrencePattern
}

// NewEvent builds a native Event from spec. The returned event shares no
// mutable state with spec.
func NewEvent(spec EventSpec) (*Event, error) {
	if spec.Start.IsZero() {
		return nil, invalid("start", "must be set")
	}
	zone := spec.Zone
	if zone == nil {
		zone = time.UTC
	}

	ev := &Event{
		ID:                spec.ID,
		Subject:           spec.Subject,
		Start:             FormatDateTime(spec.Start.UTC()),
		AllDay:            spec.AllDay,
		Body:              spec.Body,
		Organizer:         spec.Organizer,
		Location:          spec.Location,
		Categories:        spec.Categories,
		Busy:              Ref(BusyFree),
		Meeting:           Ref(MeetingReceived),
		Importance:        Ref(ImportanceNormal),
		RequiredAttendees: joinAttendees(spec.RequiredAttendees),
		OptionalAttendees: joinAttendees(spec.OptionalAttendees),
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	switch {
	case spec.Duration >= time.Minute:
		ev.DurationMinutes = int(spec.Duration / time.Minute)
	case !spec.End.IsZero():
		if spec.End.Before(spec.Start) {
			return nil, invalid("end", "before start")
		}
		ev.End = FormatDateTime(spec.End.UTC())
	default:
		return nil, invalid("end", "either a duration or an end must be set")
	}

	created := spec.Created
	if created.IsZero() {
		created = spec.Start
	}
	modified := spec.Modified
	if modified.IsZero() {
		modified = created
	}
	ev.Created = FormatDateTime(created.In(zone))
	ev.Modified = FormatDateTime(modified.In(zone))

	if spec.Busy != nil {
		ev.Busy = Ref(*spec.Busy)
	}
	if spec.Meeting != nil {
		ev.Meeting = Ref(*spec.Meeting)
	}
	if spec.Importance != nil {
		ev.Importance = Ref(*spec.Importance)
	}

	if spec.Recurring && spec.State == Master {
		if spec.Pattern == nil {
			return nil, invalid("recurrence pattern", "required for a recurring master")
		}
		ev.Pattern = spec.Pattern.clone()
	}
	ev.Recurring = spec.Recurring
	ev.State = spec.State

	return ev, nil
}

func joinAttendees(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return strings.Join(list, ";")
}

// PatternSpec describes a synthetic recurrence pattern. Exactly one end
// policy must be chosen: NoEnd, Occurrences > 0, or a non-zero End.
type PatternSpec struct {
	Type     RecurrenceType
	Interval int

	NoEnd       bool
	Occurrences int
	End         time.Time
	Zone        *time.Location

	Days        DayOfWeek
	DayOfMonth  int
	MonthOfYear int

	Exceptions []RecurrenceException
}

func NewRecurrencePattern(spec PatternSpec) (*RecurrencePattern, error) {
	if spec.Interval < 1 {
		return nil, invalid("interval", "must be at least 1")
	}

	policies := 0
	if spec.NoEnd {
		policies++
	}
	if spec.Occurrences > 0 {
		policies++
	}
	if !spec.End.IsZero() {
		policies++
	}
	switch {
	case policies == 0:
		return nil, invalid("end policy", "either occurrences or end date must be specified")
	case policies > 1:
		return nil, invalid("end policy", "no-end, occurrences and end date are mutually exclusive")
	}

	p := &RecurrencePattern{
		Type:        spec.Type,
		Interval:    spec.Interval,
		NoEndDate:   spec.NoEnd,
		Occurrences: spec.Occurrences,
		DaysOfWeek:  spec.Days,
		DayOfMonth:  spec.DayOfMonth,
		MonthOfYear: spec.MonthOfYear,
		Exceptions:  make([]RecurrenceException, 0, len(spec.Exceptions)),
	}
	if !spec.End.IsZero() {
		zone := spec.Zone
		if zone == nil {
			zone = time.UTC
		}
		end := spec.End.In(zone)
		p.PatternEndDate = FormatDate(end)
		p.EndTime = FormatDateTime(end)
	}
	p.Exceptions = append(p.Exceptions, spec.Exceptions...)

	return p, nil
}

func (p *RecurrencePattern) clone() *RecurrencePattern {
	out := *p
	out.Exceptions = make([]RecurrenceException, len(p.Exceptions))
	copy(out.Exceptions, p.Exceptions)
	return &out
}

// NewException records a change to the occurrence on original. A deleted
// exception carries no override.
func NewException(original time.Time, deleted bool, override *Event) RecurrenceException {
	x := RecurrenceException{
		OriginalDate: FormatDate(original),
		Deleted:      deleted,
	}
	if !deleted {
		x.Item = override
	}
	return x
}

// MoveOccurrence builds an exception that reschedules the occurrence on
// original to start at newStart. The override copies master's identity and
// keeps its length.
func MoveOccurrence(master EventSpec, original, newStart time.Time) (RecurrenceException, error) {
	if master.ID == "" {
		return RecurrenceException{}, invalid("id", "master identifier must be fixed to derive an override")
	}
	spec := master
	shift := newStart.Sub(master.Start)
	spec.Start = newStart
	if !master.End.IsZero() {
		spec.End = master.End.Add(shift)
	}
	spec.Recurring = true
	spec.State = Exception
	spec.Pattern = nil
	spec.RequiredAttendees = append([]string(nil), master.RequiredAttendees...)
	spec.OptionalAttendees = append([]string(nil), master.OptionalAttendees...)
	spec.Created = time.Time{}
	spec.Modified = time.Time{}

	override, err := NewEvent(spec)
	if err != nil {
		return RecurrenceException{}, err
	}
	return NewException(original, false, override), nil
}
