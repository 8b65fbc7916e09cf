package ical

import (
	"errors"
	"fmt"
	"time"

	"github.com/sonroyaalmerol/w32ical/pkg/native"
)

// ValidationError is shared with the construction side so that callers
// match a single type regardless of which direction failed.
type ValidationError = native.ValidationError

var (
	ErrValidation = native.ErrValidation
	ErrParse      = errors.New("parse failed")
)

// ParseError reports a native timestamp that could not be read.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConsistencyWarning is raised when an override's identifier differs from
// its master's. The override is repaired and translation continues.
type ConsistencyWarning struct {
	MasterUID    string
	OverrideUID  string
	RecurrenceID time.Time
}

func (w ConsistencyWarning) String() string {
	return fmt.Sprintf("override of %s at %s has UID %q",
		w.MasterUID, w.RecurrenceID.Format(dateTimeUTCFormat), w.OverrideUID)
}
