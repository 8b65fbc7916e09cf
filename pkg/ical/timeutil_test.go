package ical

import (
	"errors"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizer_RequiresZone(t *testing.T) {
	_, err := NewNormalizer(nil)
	assert.Error(t, err)
}

func TestNormalizer(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	n := newNormalizer(t, est)

	got, err := n.UTC("start", "03/04/2024 09:30")
	require.NoError(t, err)
	assertInstant(t, time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())

	got, err = n.Local("creation time", "03/01/2024 10:00")
	require.NoError(t, err)
	assertInstant(t, time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC), got)

	wall, err := n.Wall("pattern end date", "06/30/2024")
	require.NoError(t, err)
	assert.Equal(t, 30, wall.Day())
	assert.Equal(t, est, wall.Location())
}

func TestNormalizer_ParseError(t *testing.T) {
	n := newNormalizer(t, time.UTC)

	for _, raw := range []string{"", "   ", "not-a-timestamp??"} {
		_, err := n.UTC("start", raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrParse))
		assert.False(t, errors.Is(err, ErrValidation))

		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "start", perr.Field)
		assert.Equal(t, raw, perr.Value)
	}
}

func TestAlignExceptionDate(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	jst := time.FixedZone("JST", 9*3600)

	tests := []struct {
		name     string
		original time.Time
		master   time.Time
		want     time.Time
	}{
		{
			name:     "utc",
			original: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			master:   seriesStart,
			want:     time.Date(2024, 3, 11, 14, 30, 0, 0, time.UTC),
		},
		{
			name:     "same date in zone and utc",
			original: time.Date(2024, 3, 11, 0, 0, 0, 0, est),
			master:   seriesStart,
			want:     time.Date(2024, 3, 11, 14, 30, 0, 0, time.UTC),
		},
		{
			// 02:00Z is 21:00 on the previous local day.
			name:     "utc date after local date",
			original: time.Date(2024, 3, 6, 21, 0, 0, 0, est),
			master:   time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC),
			want:     time.Date(2024, 3, 7, 2, 0, 0, 0, time.UTC),
		},
		{
			// 20:00Z is 05:00 on the next local day.
			name:     "utc date before local date",
			original: time.Date(2024, 3, 7, 0, 0, 0, 0, jst),
			master:   time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC),
			want:     time.Date(2024, 3, 6, 20, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignExceptionDate(tt.original, tt.master)
			assertInstant(t, tt.want, got)
			assert.Equal(t, tt.original.Day(), got.In(tt.original.Location()).Day())
		})
	}
}

func TestNormalizer_Clock(t *testing.T) {
	n := newNormalizer(t, time.UTC)

	for raw, want := range map[string][2]int{
		"14:30":            {14, 30},
		"14:30:15":         {14, 30},
		"2:30 PM":          {14, 30},
		"2:30PM":           {14, 30},
		"12:05 am":         {0, 5},
		"3 PM":             {15, 0},
		"12/30/1899 08:45": {8, 45},
	} {
		got, err := n.Clock("pattern end time", raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want[0], got.Hour(), raw)
		assert.Equal(t, want[1], got.Minute(), raw)
	}

	_, err := n.Clock("pattern end time", "half past")
	assert.ErrorIs(t, err, ErrParse)
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		0:                 "PT0S",
		15 * time.Minute:  "PT15M",
		time.Hour:         "PT1H",
		90 * time.Minute:  "PT1H30M",
		24 * time.Hour:    "P1D",
		25 * time.Hour:    "P1DT1H",
		-30 * time.Minute: "-PT30M",
	}
	for d, want := range tests {
		assert.Equal(t, want, formatDuration(d), d.String())

		prop := ical.NewProp(ical.PropDuration)
		prop.Value = formatDuration(d)
		got, err := prop.Duration()
		require.NoError(t, err, prop.Value)
		assert.Equal(t, d, got, prop.Value)
	}
}
