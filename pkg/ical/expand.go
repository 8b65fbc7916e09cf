package ical

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

// Instance is one concrete occurrence produced by ExpandInstances.
type Instance struct {
	UID          string
	Start        time.Time
	End          time.Time
	RecurrenceID time.Time
	Overridden   bool
	Summary      string
	Transparent  bool
	Cancelled    bool
}

// span is the timing of a parsed VEVENT.
type span struct {
	comp         *ical.Component
	uid          string
	start        time.Time
	duration     time.Duration
	rule         *rrule.ROption
	exdates      []time.Time
	recurrenceID time.Time
}

// ExpandInstances resolves components, as produced by the serializer, into
// the occurrences overlapping [rangeStart, rangeEnd). Overrides replace the
// instance whose start equals their RECURRENCE-ID; EXDATEs suppress
// instances. Instances are returned ordered by start.
func ExpandInstances(components []*ical.Component, rangeStart, rangeEnd time.Time) ([]Instance, error) {
	var masters []span
	overrides := make(map[string]map[int64]span)

	for _, comp := range components {
		if comp.Name != ical.CompEvent {
			continue
		}
		sp, err := parseSpan(comp)
		if err != nil {
			return nil, err
		}
		if sp.recurrenceID.IsZero() {
			masters = append(masters, sp)
			continue
		}
		if overrides[sp.uid] == nil {
			overrides[sp.uid] = make(map[int64]span)
		}
		overrides[sp.uid][sp.recurrenceID.Unix()] = sp
	}

	var out []Instance
	for _, m := range masters {
		byID := overrides[m.uid]
		if m.rule == nil {
			if overlaps(m.start, m.start.Add(m.duration), rangeStart, rangeEnd) {
				out = append(out, m.instance(m.start, false))
			}
			continue
		}

		starts, err := m.occurrences(rangeStart.Add(-m.duration), rangeEnd)
		if err != nil {
			return nil, err
		}
		excluded := make(map[int64]bool, len(m.exdates))
		for _, ex := range m.exdates {
			excluded[ex.Unix()] = true
		}

		for _, occ := range starts {
			if o, ok := byID[occ.Unix()]; ok {
				delete(byID, occ.Unix())
				if overlaps(o.start, o.start.Add(o.duration), rangeStart, rangeEnd) {
					out = append(out, o.instance(occ, true))
				}
				continue
			}
			if overlaps(occ, occ.Add(m.duration), rangeStart, rangeEnd) {
				out = append(out, m.instance(occ, false))
			}
		}

		// Overrides moved into the range from an original outside it.
		for id, o := range byID {
			if excluded[id] {
				continue
			}
			if overlaps(o.start, o.start.Add(o.duration), rangeStart, rangeEnd) {
				out = append(out, o.instance(o.recurrenceID, true))
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (sp span) occurrences(after, before time.Time) ([]time.Time, error) {
	opt := *sp.rule
	opt.Dtstart = sp.start
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("uid %s: invalid RRULE: %w", sp.uid, err)
	}

	var set rrule.Set
	set.RRule(r)
	for _, ex := range sp.exdates {
		set.ExDate(ex)
	}
	return set.Between(after, before, true), nil
}

func (sp span) instance(recurrenceID time.Time, overridden bool) Instance {
	inst := Instance{
		UID:          sp.uid,
		Start:        sp.start,
		End:          sp.start.Add(sp.duration),
		RecurrenceID: recurrenceID,
		Overridden:   overridden,
	}
	if !overridden {
		inst.Start = recurrenceID
		inst.End = recurrenceID.Add(sp.duration)
	}
	if p := sp.comp.Props.Get(ical.PropSummary); p != nil {
		inst.Summary = p.Value
	}
	if p := sp.comp.Props.Get(ical.PropTransparency); p != nil {
		inst.Transparent = p.Value == transpTransparent
	}
	if p := sp.comp.Props.Get(ical.PropStatus); p != nil {
		inst.Cancelled = p.Value == statusCancelled
	}
	return inst
}

// parseSpan reads the timing of comp. Floating and DATE values are read in
// UTC, which is how the serializer writes them.
func parseSpan(comp *ical.Component) (span, error) {
	sp := span{comp: comp}

	uid := comp.Props.Get(ical.PropUID)
	if uid == nil {
		return sp, fmt.Errorf("missing UID")
	}
	sp.uid = uid.Value

	if comp.Props.Get(ical.PropDateTimeStart) == nil {
		return sp, fmt.Errorf("uid %s: missing DTSTART", sp.uid)
	}
	ev := ical.Event{Component: comp}
	start, err := ev.DateTimeStart(time.UTC)
	if err != nil {
		return sp, fmt.Errorf("uid %s: invalid DTSTART: %w", sp.uid, err)
	}
	end, err := ev.DateTimeEnd(time.UTC)
	if err != nil {
		return sp, fmt.Errorf("uid %s: invalid DTEND or DURATION: %w", sp.uid, err)
	}
	sp.start, sp.duration = start, end.Sub(start)

	sp.rule, err = comp.Props.RecurrenceRule()
	if err != nil {
		return sp, fmt.Errorf("uid %s: %w", sp.uid, err)
	}

	sp.exdates, err = exceptionDates(comp)
	if err != nil {
		return sp, fmt.Errorf("uid %s: invalid EXDATE: %w", sp.uid, err)
	}

	if comp.Props.Get(ical.PropRecurrenceID) != nil {
		sp.recurrenceID, err = comp.Props.DateTime(ical.PropRecurrenceID, time.UTC)
		if err != nil {
			return sp, fmt.Errorf("uid %s: invalid RECURRENCE-ID: %w", sp.uid, err)
		}
	}

	return sp, nil
}

// exceptionDates reads every EXDATE of comp. A property may carry a
// comma-separated list; each element is decoded with the property's
// parameters.
func exceptionDates(comp *ical.Component) ([]time.Time, error) {
	var dates []time.Time
	for _, p := range comp.Props.Values(ical.PropExceptionDates) {
		for _, v := range strings.Split(p.Value, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			elem := ical.Prop{Name: p.Name, Params: p.Params, Value: v}
			t, err := elem.DateTime(time.UTC)
			if err != nil {
				return nil, err
			}
			dates = append(dates, t)
		}
	}
	return dates, nil
}

func overlaps(start, end, rangeStart, rangeEnd time.Time) bool {
	if end.Equal(start) {
		return !start.Before(rangeStart) && start.Before(rangeEnd)
	}
	return start.Before(rangeEnd) && end.After(rangeStart)
}
