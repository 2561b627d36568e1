// Package calendar renders booking data into calendar artifacts: an RFC 5545
// invite, provider deep links and a content fingerprint. Everything here is
// pure; no function performs I/O.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DefaultProductID is emitted as PRODID when Options.ProductID is empty.
const DefaultProductID = "-//NoVendor//Booking//EN"

// Event is the subset of a booking the builders need.
type Event struct {
	ID              string
	Summary         string
	Agenda          string
	Location        string
	JoinLink        string
	AttendeeName    string
	AttendeeEmail   string
	AttendeeCompany string
	Sequence        int
	Start           time.Time
	End             time.Time
}

// Options carries organizer identity and generation parameters.
type Options struct {
	UIDDomain      string
	OrganizerName  string
	OrganizerEmail string
	ProductID      string
	// DTStamp is the generation time. Zero means time.Now().
	DTStamp time.Time
}

// InvalidDateError reports an unusable event time window.
type InvalidDateError struct {
	Field string
	Value string
}

func (e *InvalidDateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid date for %s", e.Field)
	}
	return fmt.Sprintf("invalid date for %s: %q", e.Field, e.Value)
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
}

// ParseInstant parses an ISO-8601 instant carrying an explicit offset and
// returns it in UTC.
func ParseInstant(field, value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, &InvalidDateError{Field: field}
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &InvalidDateError{Field: field, Value: value}
}

// UID returns the calendar identity for a booking id under domain.
func UID(id, domain string) string { return id + "@" + domain }

// UIDDomain extracts the domain part of an existing UID.
func UIDDomain(uid string) string {
	i := strings.LastIndex(uid, "@")
	if i < 0 {
		return ""
	}
	return uid[i+1:]
}

// Description is the plain-text (unescaped) event description shared by the
// invite and the deep links.
func Description(ev Event) string {
	lines := []string{"Agenda: " + ev.Agenda}
	attendee := fmt.Sprintf("Attendee: %s <%s>", ev.AttendeeName, ev.AttendeeEmail)
	if ev.AttendeeCompany != "" {
		attendee += " (" + ev.AttendeeCompany + ")"
	}
	lines = append(lines, attendee)
	if ev.JoinLink != "" {
		lines = append(lines, "Join: "+ev.JoinLink)
	}
	lines = append(lines, "Booking ID: "+ev.ID)
	return strings.Join(lines, "\n")
}

// Filename returns the download name for a booking's invite. Characters
// outside [A-Za-z0-9_-] are replaced so the name is safe in a
// Content-Disposition header.
func Filename(id string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, id)
	return "novendor-" + safe + ".ics"
}

func validateWindow(ev Event) error {
	if ev.Start.IsZero() {
		return &InvalidDateError{Field: "start"}
	}
	if ev.End.IsZero() {
		return &InvalidDateError{Field: "end"}
	}
	if !ev.End.After(ev.Start) {
		return &InvalidDateError{Field: "end", Value: ev.End.UTC().Format(time.RFC3339)}
	}
	return nil
}
