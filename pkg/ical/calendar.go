package ical

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/emersion/go-ical"
)

// MethodPublish is the iTIP method of a published, read-only feed.
const MethodPublish = "PUBLISH"

// NewCalendarOf wraps comps in a VCALENDAR carrying prodID.
func NewCalendarOf(prodID string, comps []*ical.Component) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropMethod, MethodPublish)
	cal.Children = append(cal.Children, comps...)
	return cal
}

func Encode(w io.Writer, cal *ical.Calendar) error {
	return ical.NewEncoder(w).Encode(cal)
}

func EncodeBytes(cal *ical.Calendar) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, cal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one VCALENDAR and returns its VEVENT children.
func Decode(r io.Reader) (*ical.Calendar, []*ical.Component, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse calendar: %w", err)
	}
	var events []*ical.Component
	for _, child := range cal.Children {
		if child.Name == ical.CompEvent {
			events = append(events, child)
		}
	}
	return cal, events, nil
}

type Interval struct{ S, E time.Time }

// FreeBusyOf merges the opaque, non-cancelled instances into busy
// intervals ordered by start.
func FreeBusyOf(instances []Instance) []Interval {
	var busy []Interval
	for _, inst := range instances {
		if inst.Transparent || inst.Cancelled || !inst.End.After(inst.Start) {
			continue
		}
		busy = append(busy, Interval{S: inst.Start, E: inst.End})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].S.Before(busy[j].S) })

	var merged []Interval
	for _, iv := range busy {
		if n := len(merged); n > 0 && !iv.S.After(merged[n-1].E) {
			if iv.E.After(merged[n-1].E) {
				merged[n-1].E = iv.E
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// BuildFreeBusy renders busy intervals as a VFREEBUSY calendar.
func BuildFreeBusy(start, end time.Time, busy []Interval, prodID string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	fb := ical.NewComponent(ical.CompFreeBusy)
	fb.Props.SetDateTime(ical.PropDateTimeStamp, start.UTC())
	fb.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	fb.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())

	for _, iv := range busy {
		prop := ical.NewProp(ical.PropFreeBusy)
		prop.Params.Set("FBTYPE", "BUSY")
		prop.Value = fmt.Sprintf("%s/%s",
			iv.S.UTC().Format(dateTimeUTCFormat),
			iv.E.UTC().Format(dateTimeUTCFormat))
		fb.Props.Add(prop)
	}

	cal.Children = []*ical.Component{fb}
	return cal
}
