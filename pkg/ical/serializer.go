package ical

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/rs/zerolog"

	"github.com/sonroyaalmerol/w32ical/pkg/native"
)

// Serializer translates native events into VEVENT components. It holds no
// mutable state and is safe for concurrent use.
type Serializer struct {
	norm   *Normalizer
	policy *Policy
	logger zerolog.Logger
	warn   func(ConsistencyWarning)
}

type Option func(*Serializer)

// WithPolicy sets the field visibility policy. nil means Full.
func WithPolicy(p *Policy) Option {
	return func(s *Serializer) { s.policy = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Serializer) { s.logger = l }
}

// WithWarningHandler registers fn to observe consistency warnings. It may be
// called concurrently when the serializer is shared.
func WithWarningHandler(fn func(ConsistencyWarning)) Option {
	return func(s *Serializer) { s.warn = fn }
}

func NewSerializer(norm *Normalizer, opts ...Option) (*Serializer, error) {
	if norm == nil {
		return nil, errors.New("ical: serializer needs a normalizer")
	}
	s := &Serializer{norm: norm, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Serializer) Policy() *Policy {
	return s.policy
}

// Serialize returns the components for ev: a single component, or for a
// recurring master the master followed by one component per overridden
// occurrence.
func (s *Serializer) Serialize(ev *native.Event) ([]*ical.Component, error) {
	return s.serialize(ev, s.warn)
}

// SerializeReport is Serialize that also returns the consistency warnings
// raised while translating ev, including on failure.
func (s *Serializer) SerializeReport(ev *native.Event) ([]*ical.Component, []ConsistencyWarning, error) {
	var warnings []ConsistencyWarning
	comps, err := s.serialize(ev, func(w ConsistencyWarning) {
		warnings = append(warnings, w)
		if s.warn != nil {
			s.warn(w)
		}
	})
	return comps, warnings, err
}

func (s *Serializer) serialize(ev *native.Event, warn func(ConsistencyWarning)) ([]*ical.Component, error) {
	if ev != nil && ev.IsMaster() {
		return s.withRecurrence(ev, warn)
	}
	comp, err := s.SerializeSingle(ev)
	if err != nil {
		return nil, err
	}
	return []*ical.Component{comp}, nil
}

// SerializeSingle builds the component for ev alone. Recurrence data is
// never consulted.
func (s *Serializer) SerializeSingle(ev *native.Event) (*ical.Component, error) {
	if ev == nil {
		return nil, invalid("event", "nil")
	}
	if strings.TrimSpace(ev.ID) == "" {
		return nil, invalid("id", "must be set")
	}
	comp, _, err := s.single(ev)
	return comp, err
}

// SerializeWithRecurrence builds the master component, its RRULE and EXDATE
// list, and one override component per replaced occurrence. Overrides are
// serialized with SerializeSingle semantics, so their own exceptions are
// never expanded.
func (s *Serializer) SerializeWithRecurrence(master *native.Event) ([]*ical.Component, error) {
	return s.serialize(master, s.warn)
}

func (s *Serializer) withRecurrence(master *native.Event, warn func(ConsistencyWarning)) ([]*ical.Component, error) {
	if strings.TrimSpace(master.ID) == "" {
		return nil, invalid("id", "must be set")
	}

	rule, err := TranslateRecurrence(master, s.norm)
	if err != nil {
		return nil, err
	}

	masterComp, start, err := s.single(master)
	if err != nil {
		return nil, err
	}

	pattern := master.RecurrencePattern()
	s.logger.Debug().
		Str("uid", master.ID).
		Str("subject", master.Subject).
		Int("exceptions", len(pattern.Exceptions)).
		Msg("expanding recurrence")

	sequence := 1
	var exdates []time.Time
	overrides := make([]*ical.Component, 0, len(pattern.Exceptions))

	for _, x := range pattern.Exceptions {
		original, err := s.norm.Wall("exception original date", x.OriginalDate)
		if err != nil {
			return nil, err
		}
		recurrenceID := AlignExceptionDate(original, start)
		if master.AllDay {
			recurrenceID = dateOnly(original)
		}

		switch {
		case x.Deleted:
			exdates = append(exdates, recurrenceID)
		case x.Override() != nil:
			comp, _, err := s.single(x.Override())
			if err != nil {
				return nil, err
			}
			setInstant(comp, ical.PropRecurrenceID, recurrenceID, master.AllDay)
			s.reconcileUID(master.ID, comp, recurrenceID, warn)
			overrides = append(overrides, comp)
		}
		sequence++
	}

	if len(exdates) > 0 {
		masterComp.Props.Set(exdateProp(exdates, master.AllDay))
	}
	if rule != nil {
		opt := rule.Option()
		masterComp.Props.SetRecurrenceRule(&opt)
	}
	setSequence(masterComp, sequence)

	return append([]*ical.Component{masterComp}, overrides...), nil
}

func (s *Serializer) reconcileUID(masterUID string, comp *ical.Component, recurrenceID time.Time, warn func(ConsistencyWarning)) {
	var uid string
	if p := comp.Props.Get(ical.PropUID); p != nil {
		uid = p.Value
	}
	if uid == masterUID {
		return
	}

	w := ConsistencyWarning{MasterUID: masterUID, OverrideUID: uid, RecurrenceID: recurrenceID}
	s.logger.Warn().
		Str("master_uid", masterUID).
		Str("override_uid", uid).
		Time("recurrence_id", recurrenceID).
		Msg("recurrence exception has a different UID, using the master's")
	if warn != nil {
		warn(w)
	}
	comp.Props.SetText(ical.PropUID, masterUID)
}

// single builds one component and reports the UTC start it used.
func (s *Serializer) single(ev *native.Event) (*ical.Component, time.Time, error) {
	comp := ical.NewComponent(ical.CompEvent)
	comp.Props.SetText(ical.PropUID, ev.ID)

	start, err := s.norm.UTC("start", ev.Start)
	if err != nil {
		return nil, time.Time{}, err
	}
	setInstant(comp, ical.PropDateTimeStart, start, ev.AllDay)

	if err := s.setEnd(comp, ev, start); err != nil {
		return nil, time.Time{}, err
	}
	if err := s.setStamps(comp, ev, start); err != nil {
		return nil, time.Time{}, err
	}
	s.setMetadata(comp, ev)
	setSequence(comp, 1)

	return comp, start, nil
}

// setEnd emits exactly one of DTEND and DURATION. A positive duration wins
// over the end; all-day events always get a date-valued DTEND.
func (s *Serializer) setEnd(comp *ical.Component, ev *native.Event, start time.Time) error {
	if ev.DurationMinutes > 0 {
		d := time.Duration(ev.DurationMinutes) * time.Minute
		if ev.AllDay {
			setInstant(comp, ical.PropDateTimeEnd, start.Add(d), true)
			return nil
		}
		prop := ical.NewProp(ical.PropDuration)
		prop.Value = formatDuration(d)
		comp.Props.Set(prop)
		return nil
	}

	if strings.TrimSpace(ev.End) == "" {
		return invalid("end", "neither a positive duration nor an end is set")
	}
	end, err := s.norm.UTC("end", ev.End)
	if err != nil {
		return err
	}
	setInstant(comp, ical.PropDateTimeEnd, end, ev.AllDay)
	return nil
}

// setStamps emits DTSTAMP, CREATED and LAST-MODIFIED. LAST-MODIFIED falls
// back to the creation time, then to the start.
func (s *Serializer) setStamps(comp *ical.Component, ev *native.Event, start time.Time) error {
	created, hasCreated, err := s.optionalLocal("creation time", ev.Created)
	if err != nil {
		return err
	}
	modified, hasModified, err := s.optionalLocal("modification time", ev.Modified)
	if err != nil {
		return err
	}
	switch {
	case hasModified:
	case hasCreated:
		modified = created
	default:
		modified = start
	}

	if hasCreated {
		comp.Props.SetDateTime(ical.PropDateTimeStamp, created)
		comp.Props.SetDateTime(ical.PropCreated, created)
	} else {
		comp.Props.SetDateTime(ical.PropDateTimeStamp, modified)
	}
	comp.Props.SetDateTime(ical.PropLastModified, modified)
	return nil
}

func (s *Serializer) optionalLocal(field, raw string) (time.Time, bool, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false, nil
	}
	t, err := s.norm.Local(field, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func (s *Serializer) setMetadata(comp *ical.Component, ev *native.Event) {
	p := s.policy

	summary := PlaceholderSummary
	if p.Allows(FieldSummary) && ev.Subject != "" {
		summary = ev.Subject
	}
	comp.Props.SetText(ical.PropSummary, summary)

	if p.Allows(FieldDescription) && ev.Body != "" {
		comp.Props.SetText(ical.PropDescription, ev.Body)
	}

	if p.Allows(FieldOrganizer) && strings.TrimSpace(ev.Organizer) != "" {
		comp.Props.Set(calAddress(ical.PropOrganizer, ev.Organizer))
	}

	if p.Allows(FieldBusy) && ev.Busy != nil {
		if v, ok := transparencyOf(*ev.Busy); ok {
			comp.Props.SetText(ical.PropTransparency, v)
		}
	}

	if p.Allows(FieldStatus) && ev.Meeting != nil {
		if v, ok := statusOf(*ev.Meeting); ok {
			comp.Props.SetText(ical.PropStatus, v)
		}
	}

	if p.Allows(FieldLocation) && ev.Location != "" {
		comp.Props.SetText(ical.PropLocation, ev.Location)
	}

	if p.Allows(FieldCategories) {
		for _, c := range splitList(ev.Categories, ",") {
			prop := ical.NewProp(ical.PropCategories)
			prop.SetText(c)
			comp.Props.Add(prop)
		}
	}

	if p.Allows(FieldAttendees) {
		for _, a := range splitList(ev.RequiredAttendees, ";") {
			prop := calAddress(ical.PropAttendee, a)
			prop.Params.Set("ROLE", roleRequired)
			comp.Props.Add(prop)
		}
		for _, a := range splitList(ev.OptionalAttendees, ";") {
			comp.Props.Add(calAddress(ical.PropAttendee, a))
		}
	}

	if p.Allows(FieldImportance) && ev.Importance != nil {
		if v, ok := priorityOf(*ev.Importance); ok {
			comp.Props.Set(&ical.Prop{Name: ical.PropPriority, Value: v, Params: make(ical.Params)})
		}
	}
}

// setInstant writes t as a DATE when dateOnly, else as a UTC DATE-TIME.
func setInstant(comp *ical.Component, name string, t time.Time, dateOnlyValue bool) {
	if dateOnlyValue {
		prop := ical.NewProp(name)
		prop.SetDate(dateOnly(t.UTC()))
		comp.Props.Set(prop)
		return
	}
	comp.Props.SetDateTime(name, t.UTC())
}

// exdateProp renders dates as one EXDATE list typed like the series'
// DTSTART.
func exdateProp(dates []time.Time, dateOnlyValue bool) *ical.Prop {
	layout, valueType := dateTimeUTCFormat, ical.ValueDateTime
	if dateOnlyValue {
		layout, valueType = dateFormat, ical.ValueDate
	}
	values := make([]string, len(dates))
	for i, d := range dates {
		values[i] = d.UTC().Format(layout)
	}
	prop := ical.NewProp(ical.PropExceptionDates)
	prop.Params.Set(ical.ParamValue, string(valueType))
	prop.Value = strings.Join(values, ",")
	return prop
}

func setSequence(comp *ical.Component, n int) {
	comp.Props.Set(&ical.Prop{Name: ical.PropSequence, Value: strconv.Itoa(n), Params: make(ical.Params)})
}
