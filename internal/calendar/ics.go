package calendar

import (
	"strconv"
	"strings"
	"time"
)

const crlf = "\r\n"

// BuildICS renders a single-event VCALENDAR with METHOD:REQUEST. Every line,
// including the last, ends in CRLF.
func BuildICS(ev Event, opts Options) (string, error) {
	if err := validateWindow(ev); err != nil {
		return "", err
	}
	stamp := opts.DTStamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	prodID := opts.ProductID
	if prodID == "" {
		prodID = DefaultProductID
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:REQUEST",
		"BEGIN:VEVENT",
		"UID:" + UID(ev.ID, opts.UIDDomain),
		"DTSTAMP:" + FormatUTC(stamp),
		"DTSTART:" + FormatUTC(ev.Start),
		"DTEND:" + FormatUTC(ev.End),
		"SUMMARY:" + EscapeText(ev.Summary),
		"DESCRIPTION:" + EscapeText(Description(ev)),
		"LOCATION:" + EscapeText(ev.Location),
		"ORGANIZER;CN=" + EscapeParam(opts.OrganizerName) + ":MAILTO:" + opts.OrganizerEmail,
		"ATTENDEE;CN=" + EscapeParam(ev.AttendeeName) + ";RSVP=TRUE:MAILTO:" + ev.AttendeeEmail,
		"STATUS:CONFIRMED",
		"SEQUENCE:" + strconv.Itoa(ev.Sequence),
		"END:VEVENT",
		"END:VCALENDAR",
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString(crlf)
	}
	return b.String(), nil
}
