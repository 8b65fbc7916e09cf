package ical

import (
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/sonroyaalmerol/w32ical/pkg/native"
)

// RuleParam is one key of an RRULE, in emission order.
type RuleParam struct {
	Key   string
	Value string
}

// RuleSet is the RRULE derived from a native recurrence pattern.
type RuleSet struct {
	Freq       rrule.Frequency
	Interval   int
	Until      time.Time
	Count      int
	ByDay      []rrule.Weekday
	ByMonthDay int
	ByMonth    int

	params []RuleParam
}

// Params returns the rule keys in the order they were derived.
func (r *RuleSet) Params() []RuleParam {
	out := make([]RuleParam, len(r.params))
	copy(out, r.params)
	return out
}

// Param returns the value of key and whether it is present.
func (r *RuleSet) Param(key string) (string, bool) {
	for _, p := range r.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func (r *RuleSet) Option() rrule.ROption {
	opt := rrule.ROption{
		Freq:      r.Freq,
		Interval:  r.Interval,
		Count:     r.Count,
		Until:     r.Until,
		Byweekday: append([]rrule.Weekday(nil), r.ByDay...),
	}
	if r.ByMonthDay != 0 {
		opt.Bymonthday = []int{r.ByMonthDay}
	}
	if r.ByMonth != 0 {
		opt.Bymonth = []int{r.ByMonth}
	}
	return opt
}

// String renders the RRULE value without DTSTART.
func (r *RuleSet) String() string {
	opt := r.Option()
	return opt.RRuleString()
}

func (r *RuleSet) add(key, value string) {
	r.params = append(r.params, RuleParam{Key: key, Value: value})
}

// frequencyOf collapses the native recurrence type onto the RRULE
// vocabulary. The nth variants lose their qualifier.
func frequencyOf(t native.RecurrenceType) (rrule.Frequency, error) {
	switch t {
	case native.RecursDaily:
		return rrule.DAILY, nil
	case native.RecursWeekly:
		return rrule.WEEKLY, nil
	case native.RecursMonthly, native.RecursMonthNth:
		return rrule.MONTHLY, nil
	case native.RecursYearly, native.RecursYearNth:
		return rrule.YEARLY, nil
	}
	return 0, invalid("recurrence type", "unknown code "+strconv.Itoa(int(t)))
}

func usesDaysOfWeek(t native.RecurrenceType) bool {
	switch t {
	case native.RecursWeekly, native.RecursMonthNth, native.RecursYearNth:
		return true
	}
	return false
}

// mondayFirst lists the native weekday bits in RRULE order.
var mondayFirst = []struct {
	bit native.DayOfWeek
	day rrule.Weekday
}{
	{native.Monday, rrule.MO},
	{native.Tuesday, rrule.TU},
	{native.Wednesday, rrule.WE},
	{native.Thursday, rrule.TH},
	{native.Friday, rrule.FR},
	{native.Saturday, rrule.SA},
	{native.Sunday, rrule.SU},
}

func weekdaysOf(mask native.DayOfWeek) []rrule.Weekday {
	var days []rrule.Weekday
	for _, d := range mondayFirst {
		if mask.Has(d.bit) {
			days = append(days, d.day)
		}
	}
	return days
}

func weekdayCodes(days []rrule.Weekday) string {
	codes := make([]string, len(days))
	for i, d := range days {
		codes[i] = d.String()
	}
	return strings.Join(codes, ",")
}

// TranslateRecurrence derives the RRULE of ev. It returns nil without error
// when ev is not a recurring master. Any missing or inconsistent field
// fails the whole translation; a partial rule is never returned.
func TranslateRecurrence(ev *native.Event, n *Normalizer) (*RuleSet, error) {
	if !ev.IsMaster() {
		return nil, nil
	}
	p := ev.RecurrencePattern()
	if p == nil {
		return nil, invalid("recurrence pattern", "missing on a recurring master")
	}

	freq, err := frequencyOf(p.Type)
	if err != nil {
		return nil, err
	}
	if p.Interval < 1 {
		return nil, invalid("interval", "must be at least 1")
	}

	rule := &RuleSet{Freq: freq, Interval: p.Interval}
	rule.add("freq", freq.String())
	rule.add("interval", strconv.Itoa(p.Interval))

	if !p.NoEndDate {
		switch {
		case strings.TrimSpace(p.PatternEndDate) != "":
			until, err := patternUntil(p, n)
			if err != nil {
				return nil, err
			}
			rule.Until = until
			rule.add("until", until.Format(dateTimeUTCFormat))
		case p.Occurrences > 0:
			rule.Count = p.Occurrences
			rule.add("count", strconv.Itoa(p.Occurrences))
		}
	}

	var days []rrule.Weekday
	if usesDaysOfWeek(p.Type) {
		days = weekdaysOf(p.DaysOfWeek)
	}

	switch p.Type {
	case native.RecursDaily:
	case native.RecursWeekly:
		if len(days) == 0 {
			return nil, invalid("day of week", "required for WEEKLY recurrence")
		}
		rule.setDays(days)
	case native.RecursMonthly:
		if p.DayOfMonth == 0 {
			return nil, invalid("day of month", "required for MONTHLY recurrence")
		}
		rule.setMonthDay(p.DayOfMonth)
	case native.RecursMonthNth:
		if p.DayOfMonth == 0 && len(days) == 0 {
			return nil, invalid("day of month", "day of month or day of week required for MONTHLY_NTH recurrence")
		}
		if p.DayOfMonth != 0 {
			rule.setMonthDay(p.DayOfMonth)
		}
		if len(days) > 0 {
			rule.setDays(days)
		}
	case native.RecursYearly:
		if p.DayOfMonth == 0 {
			return nil, invalid("day of month", "required for YEARLY recurrence")
		}
		if p.MonthOfYear == 0 {
			return nil, invalid("month of year", "required for YEARLY recurrence")
		}
		rule.setMonthDay(p.DayOfMonth)
		rule.setMonth(p.MonthOfYear)
	case native.RecursYearNth:
		if len(days) == 0 && p.MonthOfYear == 0 {
			return nil, invalid("day of week", "day of week or month of year required for YEARLY_NTH recurrence")
		}
		if len(days) > 0 {
			rule.setDays(days)
		}
		if p.MonthOfYear != 0 {
			rule.setMonth(p.MonthOfYear)
		}
	}

	if _, err := rrule.NewRRule(rule.Option()); err != nil {
		return nil, invalid("recurrence pattern", err.Error())
	}

	return rule, nil
}

func (r *RuleSet) setDays(days []rrule.Weekday) {
	r.ByDay = days
	r.add("byday", weekdayCodes(days))
}

func (r *RuleSet) setMonthDay(day int) {
	r.ByMonthDay = day
	r.add("bymonthday", strconv.Itoa(day))
}

func (r *RuleSet) setMonth(month int) {
	r.ByMonth = month
	r.add("bymonth", strconv.Itoa(month))
}

// patternUntil combines the pattern end date with its optional end time of
// day and reports the instant in UTC.
func patternUntil(p *native.RecurrencePattern, n *Normalizer) (time.Time, error) {
	day, err := n.Wall("pattern end date", p.PatternEndDate)
	if err != nil {
		return time.Time{}, err
	}
	until := combineDateClock(day, time.Time{})
	if strings.TrimSpace(p.EndTime) != "" {
		clock, err := n.Clock("pattern end time", p.EndTime)
		if err != nil {
			return time.Time{}, err
		}
		until = combineDateClock(day, clock)
	}
	return until.UTC(), nil
}
