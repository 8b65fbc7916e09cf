package ical

import (
	"fmt"
	"sort"
	"strings"
)

// Field names an optional VEVENT property subject to a visibility policy.
type Field string

const (
	FieldSummary     Field = "summary"
	FieldDescription Field = "description"
	FieldOrganizer   Field = "organizer"
	FieldBusy        Field = "busy"
	FieldStatus      Field = "status"
	FieldLocation    Field = "location"
	FieldCategories  Field = "categories"
	FieldAttendees   Field = "attendees"
	FieldImportance  Field = "importance"
)

// Fields lists every filterable field.
var Fields = []Field{
	FieldSummary,
	FieldDescription,
	FieldOrganizer,
	FieldBusy,
	FieldStatus,
	FieldLocation,
	FieldCategories,
	FieldAttendees,
	FieldImportance,
}

// Alternative keys accepted in policy definitions, named after the native
// property or the iCalendar property they drive.
var fieldAliases = map[string]Field{
	"subject":       FieldSummary,
	"body":          FieldDescription,
	"transp":        FieldBusy,
	"meetingstatus": FieldStatus,
	"priority":      FieldImportance,
}

// PlaceholderSummary replaces a hidden subject. SUMMARY is always emitted.
const PlaceholderSummary = "Event"

// Policy selects which optional fields are emitted. A nil *Policy allows
// everything, same as Full.
type Policy struct {
	name   string
	fields map[Field]bool
}

var (
	Full = mustPolicy("full", map[string]bool{
		"summary":     true,
		"description": true,
		"organizer":   true,
		"busy":        true,
		"status":      true,
		"location":    true,
		"categories":  true,
		"attendees":   true,
		"importance":  true,
	})
	// Safe exposes only free/busy information.
	Safe = mustPolicy("safe", map[string]bool{
		"busy":   true,
		"status": true,
	})
)

// NewPolicy builds a named policy. Keys may use the field names or their
// aliases; unknown keys are rejected. Fields not mentioned are hidden.
func NewPolicy(name string, include map[string]bool) (*Policy, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("policy name is empty")
	}
	p := &Policy{name: name, fields: make(map[Field]bool, len(include))}
	for key, on := range include {
		f, ok := lookupField(key)
		if !ok {
			return nil, fmt.Errorf("policy %s: unknown field %q", name, key)
		}
		// An alias and its field may both appear; either one enables it.
		p.fields[f] = p.fields[f] || on
	}
	return p, nil
}

func mustPolicy(name string, include map[string]bool) *Policy {
	p, err := NewPolicy(name, include)
	if err != nil {
		panic(err)
	}
	return p
}

func lookupField(key string) (Field, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if f, ok := fieldAliases[k]; ok {
		return f, true
	}
	for _, f := range Fields {
		if string(f) == k {
			return f, true
		}
	}
	return "", false
}

func (p *Policy) Name() string {
	if p == nil {
		return Full.name
	}
	return p.name
}

// Allows reports whether f is emitted under p.
func (p *Policy) Allows(f Field) bool {
	if p == nil {
		return true
	}
	return p.fields[f]
}

// Enabled returns the allowed fields in a stable order.
func (p *Policy) Enabled() []Field {
	var out []Field
	for _, f := range Fields {
		if p.Allows(f) {
			out = append(out, f)
		}
	}
	return out
}

// Policies is a registry of named policies. The built-in full and safe
// policies are always present.
type Policies map[string]*Policy

func NewPolicies(custom ...*Policy) Policies {
	reg := Policies{Full.name: Full, Safe.name: Safe}
	for _, p := range custom {
		reg[strings.ToLower(p.name)] = p
	}
	return reg
}

func (reg Policies) Lookup(name string) (*Policy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Full, nil
	}
	if p, ok := reg[key]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown filter policy %q (known: %s)", name, strings.Join(reg.names(), ", "))
}

func (reg Policies) names() []string {
	names := make([]string, 0, len(reg))
	for n := range reg {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
