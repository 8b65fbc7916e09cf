package ical

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	dateTimeUTCFormat = "20060102T150405Z"
	dateFormat        = "20060102"
)

// clockLayouts are the bare time-of-day forms the provider uses for
// pattern end times.
var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

var errEmptyTimestamp = errors.New("empty timestamp")

// Normalizer turns native textual timestamps into time.Time values. The
// zone applies to native local fields (creation, modification, pattern end,
// exception dates) that carry no offset of their own.
type Normalizer struct {
	zone *time.Location
}

func NewNormalizer(zone *time.Location) (*Normalizer, error) {
	if zone == nil {
		return nil, errors.New("ical: normalizer needs an explicit time zone")
	}
	return &Normalizer{zone: zone}, nil
}

func (n *Normalizer) Zone() *time.Location {
	return n.zone
}

// UTC parses a timestamp the provider reports in UTC. An offset embedded in
// raw is honored.
func (n *Normalizer) UTC(field, raw string) (time.Time, error) {
	t, err := parseNative(field, raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Local parses a timestamp in the configured zone and returns it in UTC.
func (n *Normalizer) Local(field, raw string) (time.Time, error) {
	t, err := n.Wall(field, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Wall parses a timestamp in the configured zone and keeps that zone, so
// that calendar date and clock read as the provider wrote them.
func (n *Normalizer) Wall(field, raw string) (time.Time, error) {
	return parseNative(field, raw, n.zone)
}

func parseNative(field, raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &ParseError{Field: field, Value: raw, Err: errEmptyTimestamp}
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, &ParseError{Field: field, Value: raw, Err: err}
	}
	return t, nil
}

// Clock parses a time of day. Bare clocks ("14:30", "2:30 PM") are read
// on the zero date; anything else is parsed as a full timestamp in the
// configured zone and only its clock is meaningful to callers.
func (n *Normalizer) Clock(field, raw string) (time.Time, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, s, n.zone); err == nil {
			return t, nil
		}
	}
	return n.Wall(field, raw)
}

// AlignExceptionDate returns the instance of a series starting at
// masterStart whose calendar date, read in original's location, is
// original's date. Instances keep the master's UTC clock, so the result
// equals the DTSTART of the instance the exception replaces.
func AlignExceptionDate(original, masterStart time.Time) time.Time {
	clock := masterStart.UTC()
	y, m, d := original.Date()
	aligned := time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)

	ly, lm, ld := aligned.In(original.Location()).Date()
	shift := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Sub(time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC))
	return aligned.Add(shift)
}

// combineDateClock joins the date of day with the clock of clock, in day's
// location.
func combineDateClock(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, day.Location())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// formatDuration renders d as an RFC 5545 dur-value.
func formatDuration(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if hours > 0 || minutes > 0 || seconds > 0 || days == 0 {
		b.WriteByte('T')
		if hours > 0 {
			fmt.Fprintf(&b, "%dH", hours)
		}
		if minutes > 0 {
			fmt.Fprintf(&b, "%dM", minutes)
		}
		if seconds > 0 || (hours == 0 && minutes == 0) {
			fmt.Fprintf(&b, "%dS", seconds)
		}
	}
	return b.String()
}
