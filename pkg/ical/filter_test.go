package ical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinPolicies(t *testing.T) {
	assert.Equal(t, Fields, Full.Enabled())
	assert.Equal(t, []Field{FieldBusy, FieldStatus}, Safe.Enabled())

	var none *Policy
	assert.Equal(t, "full", none.Name())
	for _, f := range Fields {
		assert.True(t, none.Allows(f), f)
	}
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy("team", map[string]bool{
		"Subject":  true,
		"transp":   true,
		"location": true,
		"body":     false,
	})
	require.NoError(t, err)

	assert.Equal(t, "team", p.Name())
	assert.Equal(t, []Field{FieldSummary, FieldBusy, FieldLocation}, p.Enabled())
	assert.False(t, p.Allows(FieldDescription))

	_, err = NewPolicy("broken", map[string]bool{"colour": true})
	assert.ErrorContains(t, err, "colour")

	_, err = NewPolicy(" ", nil)
	assert.Error(t, err)
}

func TestPolicies_Lookup(t *testing.T) {
	team, err := NewPolicy("Team", map[string]bool{"summary": true})
	require.NoError(t, err)
	reg := NewPolicies(team)

	tests := []struct {
		name string
		want *Policy
	}{
		{name: "", want: Full},
		{name: "full", want: Full},
		{name: "SAFE", want: Safe},
		{name: "team", want: team},
	}
	for _, tt := range tests {
		got, err := reg.Lookup(tt.name)
		require.NoError(t, err, tt.name)
		assert.Same(t, tt.want, got, tt.name)
	}

	_, err = reg.Lookup("private")
	assert.ErrorContains(t, err, "full, safe, team")
}
