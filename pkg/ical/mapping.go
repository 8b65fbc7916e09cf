package ical

import (
	"net/mail"
	"strconv"
	"strings"

	"github.com/emersion/go-ical"

	"github.com/sonroyaalmerol/w32ical/pkg/native"
)

// Values of TRANSP, STATUS and ROLE used by the serializer.
const (
	transpOpaque      = "OPAQUE"
	transpTransparent = "TRANSPARENT"

	statusTentative = "TENTATIVE"
	statusConfirmed = "CONFIRMED"
	statusCancelled = "CANCELLED"

	roleRequired = "REQ-PARTICIPANT"
)

func transparencyOf(b native.BusyStatus) (string, bool) {
	switch b {
	case native.BusyFree, native.BusyTentative:
		return transpTransparent, true
	case native.BusyBusy, native.BusyOutOfOffice, native.BusyWorkingElsewhere:
		return transpOpaque, true
	}
	return "", false
}

func statusOf(m native.MeetingStatus) (string, bool) {
	switch m {
	case native.MeetingNone, native.MeetingReceived:
		return statusTentative, true
	case native.MeetingOrganized:
		return statusConfirmed, true
	case native.MeetingCanceled, native.MeetingReceivedAndCanceled:
		return statusCancelled, true
	}
	return "", false
}

func priorityOf(i native.Importance) (string, bool) {
	switch i {
	case native.ImportanceHigh:
		return strconv.Itoa(4), true
	case native.ImportanceNormal:
		return strconv.Itoa(5), true
	case native.ImportanceLow:
		return strconv.Itoa(6), true
	}
	return "", false
}

// splitList splits a native delimited list, dropping blanks.
func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// calAddress builds an ORGANIZER or ATTENDEE property. Values that parse as
// a mail address become mailto: URIs with the display name in CN; anything
// else, typically a bare display name, is kept verbatim.
func calAddress(name, raw string) *ical.Prop {
	prop := ical.NewProp(name)
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(raw), "mailto:") {
		prop.Value = raw
		return prop
	}
	if addr, err := mail.ParseAddress(raw); err == nil {
		prop.Value = "mailto:" + addr.Address
		if addr.Name != "" {
			prop.Params.Set("CN", addr.Name)
		}
		return prop
	}
	prop.Value = raw
	return prop
}
