package ical

import (
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonroyaalmerol/w32ical/pkg/native"
)

var (
	seriesStart = time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	seriesEnd   = time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)
)

func newNormalizer(t *testing.T, zone *time.Location) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(zone)
	require.NoError(t, err)
	return n
}

func newSerializer(t *testing.T, opts ...Option) *Serializer {
	t.Helper()
	s, err := NewSerializer(newNormalizer(t, time.UTC), opts...)
	require.NoError(t, err)
	return s
}

func newPattern(t *testing.T, spec native.PatternSpec) *native.RecurrencePattern {
	t.Helper()
	p, err := native.NewRecurrencePattern(spec)
	require.NoError(t, err)
	return p
}

func newMaster(t *testing.T, p *native.RecurrencePattern) *native.Event {
	t.Helper()
	ev, err := native.NewEvent(native.EventSpec{
		ID:        "series-1",
		Subject:   "Weekly sync",
		Start:     seriesStart,
		End:       seriesEnd,
		Recurring: true,
		State:     native.Master,
		Pattern:   p,
	})
	require.NoError(t, err)
	return ev
}

func assertInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func propValue(c *ical.Component, name string) string {
	if p := c.Props.Get(name); p != nil {
		return p.Value
	}
	return ""
}
