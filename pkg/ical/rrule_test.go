package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"

	"github.com/sonroyaalmerol/w32ical/pkg/native"
)

func TestTranslateRecurrence(t *testing.T) {
	until := time.Date(2024, 6, 30, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		spec   native.PatternSpec
		want   string
		params []RuleParam
	}{
		{
			name: "weekly days in monday-first order",
			spec: native.PatternSpec{
				Type: native.RecursWeekly, Interval: 1, NoEnd: true,
				Days: native.Friday | native.Monday | native.Wednesday,
			},
			want: "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE,FR",
			params: []RuleParam{
				{Key: "freq", Value: "WEEKLY"},
				{Key: "interval", Value: "1"},
				{Key: "byday", Value: "MO,WE,FR"},
			},
		},
		{
			name: "sunday is emitted last",
			spec: native.PatternSpec{
				Type: native.RecursWeekly, Interval: 2, Occurrences: 4,
				Days: native.Sunday | native.Saturday,
			},
			want: "FREQ=WEEKLY;INTERVAL=2;COUNT=4;BYDAY=SA,SU",
		},
		{
			name: "monthly by day of month",
			spec: native.PatternSpec{Type: native.RecursMonthly, Interval: 1, Occurrences: 6, DayOfMonth: 13},
			want: "FREQ=MONTHLY;INTERVAL=1;COUNT=6;BYMONTHDAY=13",
			params: []RuleParam{
				{Key: "freq", Value: "MONTHLY"},
				{Key: "interval", Value: "1"},
				{Key: "count", Value: "6"},
				{Key: "bymonthday", Value: "13"},
			},
		},
		{
			name: "monthly nth by weekday",
			spec: native.PatternSpec{Type: native.RecursMonthNth, Interval: 1, NoEnd: true, Days: native.Tuesday},
			want: "FREQ=MONTHLY;INTERVAL=1;BYDAY=TU",
		},
		{
			name: "yearly",
			spec: native.PatternSpec{Type: native.RecursYearly, Interval: 1, NoEnd: true, DayOfMonth: 13, MonthOfYear: 2},
			want: "FREQ=YEARLY;INTERVAL=1;BYMONTH=2;BYMONTHDAY=13",
		},
		{
			name: "yearly nth by month only",
			spec: native.PatternSpec{Type: native.RecursYearNth, Interval: 1, NoEnd: true, MonthOfYear: 11},
			want: "FREQ=YEARLY;INTERVAL=1;BYMONTH=11",
		},
		{
			name: "daily until",
			spec: native.PatternSpec{Type: native.RecursDaily, Interval: 2, End: until},
			want: "FREQ=DAILY;INTERVAL=2;UNTIL=20240630T170000Z",
			params: []RuleParam{
				{Key: "freq", Value: "DAILY"},
				{Key: "interval", Value: "2"},
				{Key: "until", Value: "20240630T170000Z"},
			},
		},
		{
			name: "daily ignores weekday mask",
			spec: native.PatternSpec{Type: native.RecursDaily, Interval: 1, NoEnd: true, Days: native.Monday},
			want: "FREQ=DAILY;INTERVAL=1",
		},
	}

	n := newNormalizer(t, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := TranslateRecurrence(newMaster(t, newPattern(t, tt.spec)), n)
			require.NoError(t, err)
			require.NotNil(t, rule)

			assert.Equal(t, tt.want, rule.String())
			if tt.params != nil {
				assert.Equal(t, tt.params, rule.Params())
			}
		})
	}
}

func TestTranslateRecurrence_UntilInZone(t *testing.T) {
	cest := time.FixedZone("CEST", 2*3600)
	p := newPattern(t, native.PatternSpec{
		Type: native.RecursDaily, Interval: 1,
		End: time.Date(2024, 6, 30, 17, 0, 0, 0, cest), Zone: cest,
	})

	rule, err := TranslateRecurrence(newMaster(t, p), newNormalizer(t, cest))
	require.NoError(t, err)

	assertInstant(t, time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC), rule.Until)
	v, ok := rule.Param("until")
	require.True(t, ok)
	assert.Equal(t, "20240630T150000Z", v)
}

func TestTranslateRecurrence_BareEndTime(t *testing.T) {
	tests := map[string]string{
		"14:30":            "20240331T143000Z",
		"14:30:00":         "20240331T143000Z",
		"2:30 PM":          "20240331T143000Z",
		"2:30 pm":          "20240331T143000Z",
		"9:05 AM":          "20240331T090500Z",
		"12/30/1899 14:30": "20240331T143000Z",
		"":                 "20240331T000000Z",
	}
	for endTime, want := range tests {
		t.Run(endTime, func(t *testing.T) {
			ev := newMaster(t, newPattern(t, native.PatternSpec{Type: native.RecursDaily, Interval: 1, NoEnd: true}))
			ev.Pattern.NoEndDate = false
			ev.Pattern.PatternEndDate = "03/31/2024"
			ev.Pattern.EndTime = endTime

			rule, err := TranslateRecurrence(ev, newNormalizer(t, time.UTC))
			require.NoError(t, err)
			v, ok := rule.Param("until")
			require.True(t, ok)
			assert.Equal(t, want, v)
		})
	}

	t.Run("clock in zone", func(t *testing.T) {
		cest := time.FixedZone("CEST", 2*3600)
		ev := newMaster(t, newPattern(t, native.PatternSpec{Type: native.RecursDaily, Interval: 1, NoEnd: true}))
		ev.Pattern.NoEndDate = false
		ev.Pattern.PatternEndDate = "06/30/2024"
		ev.Pattern.EndTime = "17:00"

		rule, err := TranslateRecurrence(ev, newNormalizer(t, cest))
		require.NoError(t, err)
		assertInstant(t, time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC), rule.Until)
	})

	t.Run("garbage", func(t *testing.T) {
		ev := newMaster(t, newPattern(t, native.PatternSpec{Type: native.RecursDaily, Interval: 1, NoEnd: true}))
		ev.Pattern.NoEndDate = false
		ev.Pattern.PatternEndDate = "03/31/2024"
		ev.Pattern.EndTime = "teatime??"

		_, err := TranslateRecurrence(ev, newNormalizer(t, time.UTC))
		assert.ErrorIs(t, err, ErrParse)
	})
}

func TestTranslateRecurrence_NoEndWins(t *testing.T) {
	ev := newMaster(t, newPattern(t, native.PatternSpec{Type: native.RecursDaily, Interval: 1, NoEnd: true}))
	ev.Pattern.Occurrences = 5
	ev.Pattern.PatternEndDate = "06/30/2024"

	rule, err := TranslateRecurrence(ev, newNormalizer(t, time.UTC))
	require.NoError(t, err)

	_, hasCount := rule.Param("count")
	_, hasUntil := rule.Param("until")
	assert.False(t, hasCount)
	assert.False(t, hasUntil)
}

func TestTranslateRecurrence_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *native.RecurrencePattern)
		field  string
	}{
		{
			name:   "weekly without days",
			mutate: func(p *native.RecurrencePattern) { p.Type = native.RecursWeekly },
			field:  "day of week",
		},
		{
			name:   "monthly without day",
			mutate: func(p *native.RecurrencePattern) { p.Type = native.RecursMonthly },
			field:  "day of month",
		},
		{
			name: "yearly without month",
			mutate: func(p *native.RecurrencePattern) {
				p.Type = native.RecursYearly
				p.DayOfMonth = 13
			},
			field: "month of year",
		},
		{
			name: "yearly without day",
			mutate: func(p *native.RecurrencePattern) {
				p.Type = native.RecursYearly
				p.MonthOfYear = 2
			},
			field: "day of month",
		},
		{
			name:   "monthly nth without day or weekday",
			mutate: func(p *native.RecurrencePattern) { p.Type = native.RecursMonthNth },
			field:  "day of month",
		},
		{
			name:   "yearly nth without weekday or month",
			mutate: func(p *native.RecurrencePattern) { p.Type = native.RecursYearNth },
			field:  "day of week",
		},
		{
			name:   "zero interval",
			mutate: func(p *native.RecurrencePattern) { p.Interval = 0 },
			field:  "interval",
		},
		{
			name:   "unknown type",
			mutate: func(p *native.RecurrencePattern) { p.Type = native.RecurrenceType(4) },
			field:  "recurrence type",
		},
		{
			name: "day of month out of range",
			mutate: func(p *native.RecurrencePattern) {
				p.Type = native.RecursMonthly
				p.DayOfMonth = 32
			},
			field: "recurrence pattern",
		},
	}

	n := newNormalizer(t, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := newMaster(t, newPattern(t, native.PatternSpec{Type: native.RecursDaily, Interval: 1, NoEnd: true}))
			tt.mutate(ev.Pattern)

			rule, err := TranslateRecurrence(ev, n)
			assert.Nil(t, rule)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestTranslateRecurrence_NotMaster(t *testing.T) {
	ev := newMaster(t, newPattern(t, native.PatternSpec{Type: native.RecursDaily, Interval: 1, NoEnd: true}))
	ev.State = native.Occurrence

	rule, err := TranslateRecurrence(ev, newNormalizer(t, time.UTC))
	assert.NoError(t, err)
	assert.Nil(t, rule)
}

func TestTranslateRecurrence_MissingPattern(t *testing.T) {
	ev := newMaster(t, newPattern(t, native.PatternSpec{Type: native.RecursDaily, Interval: 1, NoEnd: true}))
	ev.Pattern = nil

	_, err := TranslateRecurrence(ev, newNormalizer(t, time.UTC))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRuleSetExpandsWithRRule(t *testing.T) {
	ev := newMaster(t, newPattern(t, native.PatternSpec{
		Type: native.RecursWeekly, Interval: 1, Occurrences: 3, Days: native.Monday | native.Thursday,
	}))
	rule, err := TranslateRecurrence(ev, newNormalizer(t, time.UTC))
	require.NoError(t, err)

	opt := rule.Option()
	opt.Dtstart = seriesStart
	r, err := rrule.NewRRule(opt)
	require.NoError(t, err)

	got := r.All()
	require.Len(t, got, 3)
	assertInstant(t, seriesStart, got[0])
	assertInstant(t, time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC), got[1])
	assertInstant(t, time.Date(2024, 3, 11, 14, 30, 0, 0, time.UTC), got[2])
}
