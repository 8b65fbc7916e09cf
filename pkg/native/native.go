// Package native models calendar appointments as exposed by a desktop
// calendar-automation object model. Values here are read-only inputs to the
// translation engine in pkg/ical.
package native

// Native enumeration codes. The numeric values match the automation object
// model so that provider adapters can cast raw integers directly.

type Importance int

const (
	ImportanceLow    Importance = 0
	ImportanceNormal Importance = 1
	ImportanceHigh   Importance = 2
)

func (i Importance) String() string {
	switch i {
	case ImportanceLow:
		return "LOW"
	case ImportanceNormal:
		return "NORMAL"
	case ImportanceHigh:
		return "HIGH"
	}
	return "UNKNOWN"
}

type BusyStatus int

const (
	BusyFree             BusyStatus = 0
	BusyTentative        BusyStatus = 1
	BusyBusy             BusyStatus = 2
	BusyOutOfOffice      BusyStatus = 3
	BusyWorkingElsewhere BusyStatus = 4
)

func (b BusyStatus) String() string {
	switch b {
	case BusyFree:
		return "FREE"
	case BusyTentative:
		return "TENTATIVE"
	case BusyBusy:
		return "BUSY"
	case BusyOutOfOffice:
		return "OUT_OF_OFFICE"
	case BusyWorkingElsewhere:
		return "WORKING_ELSEWHERE"
	}
	return "UNKNOWN"
}

type MeetingStatus int

const (
	MeetingNone                MeetingStatus = 0
	MeetingOrganized           MeetingStatus = 1
	MeetingReceived            MeetingStatus = 3
	MeetingCanceled            MeetingStatus = 5
	MeetingReceivedAndCanceled MeetingStatus = 7
)

func (m MeetingStatus) String() string {
	switch m {
	case MeetingNone:
		return "NON_MEETING"
	case MeetingOrganized:
		return "MEETING"
	case MeetingReceived:
		return "RECEIVED"
	case MeetingCanceled:
		return "CANCELED"
	case MeetingReceivedAndCanceled:
		return "RECEIVED_AND_CANCELED"
	}
	return "UNKNOWN"
}

type RecurrenceType int

const (
	RecursDaily    RecurrenceType = 0
	RecursWeekly   RecurrenceType = 1
	RecursMonthly  RecurrenceType = 2
	RecursMonthNth RecurrenceType = 3
	RecursYearly   RecurrenceType = 5
	RecursYearNth  RecurrenceType = 6
)

func (r RecurrenceType) String() string {
	switch r {
	case RecursDaily:
		return "DAILY"
	case RecursWeekly:
		return "WEEKLY"
	case RecursMonthly:
		return "MONTHLY"
	case RecursMonthNth:
		return "MONTHLY_NTH"
	case RecursYearly:
		return "YEARLY"
	case RecursYearNth:
		return "YEARLY_NTH"
	}
	return "UNKNOWN"
}

type RecurrenceState int

const (
	NotRecurring RecurrenceState = 0
	Master       RecurrenceState = 1
	Occurrence   RecurrenceState = 2
	Exception    RecurrenceState = 3
)

func (s RecurrenceState) String() string {
	switch s {
	case NotRecurring:
		return "NOT_RECURRING"
	case Master:
		return "MASTER"
	case Occurrence:
		return "OCCURRENCE"
	case Exception:
		return "EXCEPTION"
	}
	return "UNKNOWN"
}

// DayOfWeek is the native weekday bitmask. Sunday is the lowest bit.
type DayOfWeek int

const (
	Sunday    DayOfWeek = 1
	Monday    DayOfWeek = 2
	Tuesday   DayOfWeek = 4
	Wednesday DayOfWeek = 8
	Thursday  DayOfWeek = 16
	Friday    DayOfWeek = 32
	Saturday  DayOfWeek = 64
)

// Has reports whether every day in d is set in the mask.
func (m DayOfWeek) Has(d DayOfWeek) bool {
	return d != 0 && m&d == d
}

// Ref returns a pointer to v. Optional enum fields on Event are pointers so
// that an unset value is distinguishable from the zero code.
func Ref[T any](v T) *T {
	return &v
}
