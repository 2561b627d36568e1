package mail

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/novendor/novendor-site/server/internal/calendar"
	"github.com/novendor/novendor-site/server/internal/config"
	"github.com/novendor/novendor-site/server/internal/model"
)

// Kind selects the wording of a booking email.
type Kind int

const (
	KindCreated Kind = iota
	KindUpdated
)

const icsContentType = "text/calendar; charset=utf-8; method=REQUEST"

// Dispatcher sends the attendee invite and, when configured, an internal
// notification for a booking.
type Dispatcher struct {
	transport Transport
	cfg       config.Booking
	log       zerolog.Logger
}

func NewDispatcher(t Transport, cfg config.Booking, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{transport: t, cfg: cfg, log: log}
}

// SendBookingEmails always notifies the attendee; a failure there is
// returned. The internal notification never fails the call: its outcome is
// only recorded in the report.
func (d *Dispatcher) SendBookingEmails(ctx context.Context, b *model.Booking, kind Kind) (model.DeliveryReport, error) {
	report := model.DeliveryReport{Attendee: model.DeliveryFailed, Internal: model.DeliverySkipped}

	mode, err := d.transport.Send(ctx, d.attendeeMessage(b, kind))
	if err != nil {
		return report, err
	}
	report.Attendee = mode

	if d.cfg.InternalEmail == "" {
		return report, nil
	}
	mode, err = d.transport.Send(ctx, d.internalMessage(b, kind))
	if err != nil {
		d.log.Error().Err(err).
			Str("booking_id", b.ID).
			Int("sequence", b.Sequence).
			Msg("internal booking notification failed")
		report.Internal = model.DeliveryFailed
		return report, nil
	}
	report.Internal = mode
	return report, nil
}

func (d *Dispatcher) from() string {
	return (&mail.Address{Name: d.cfg.OrganizerName, Address: d.cfg.OrganizerEmail}).String()
}

func (d *Dispatcher) attendeeMessage(b *model.Booking, kind Kind) Message {
	subject := fmt.Sprintf("Confirmed: %s on %s", b.Summary, whenLabel(b))
	opening := fmt.Sprintf("Hi %s,\n\nThanks for booking time with %s. The invite is attached.", b.AttendeeName, d.cfg.OrganizerName)
	if kind == KindUpdated {
		subject = fmt.Sprintf("Updated: %s on %s", b.Summary, whenLabel(b))
		opening = fmt.Sprintf("Hi %s,\n\nWe have re-sent your invite from %s. The attached version replaces any earlier one.", b.AttendeeName, d.cfg.OrganizerName)
	}
	return Message{
		From:        d.from(),
		To:          []string{b.AttendeeEmail},
		Subject:     subject,
		Text:        opening + "\n\n" + details(b),
		Attachments: []Attachment{invite(b)},
	}
}

func (d *Dispatcher) internalMessage(b *model.Booking, kind Kind) Message {
	who := b.AttendeeName
	if b.AttendeeCompany != "" {
		who += " (" + b.AttendeeCompany + ")"
	}
	subject := "New booking: " + who
	if kind == KindUpdated {
		subject = fmt.Sprintf("Booking re-sent: %s (sequence %d)", who, b.Sequence)
	}
	text := fmt.Sprintf("Attendee: %s <%s>\n%s", who, b.AttendeeEmail, details(b))
	return Message{
		From:        d.from(),
		To:          []string{d.cfg.InternalEmail},
		Subject:     subject,
		Text:        text,
		Attachments: []Attachment{invite(b)},
	}
}

func invite(b *model.Booking) Attachment {
	return Attachment{Filename: calendar.Filename(b.ID), ContentType: icsContentType, Content: b.ICSText}
}

func whenLabel(b *model.Booking) string {
	return b.StartUTC.UTC().Format("Mon 2 Jan 2006 15:04 UTC")
}

func details(b *model.Booking) string {
	lines := []string{
		"When: " + b.StartUTC.UTC().Format(time.RFC3339) + " to " + b.EndUTC.UTC().Format(time.RFC3339),
		"Timezone: " + b.Timezone,
		"Agenda: " + b.Agenda,
		"Location: " + b.Location,
	}
	if b.JoinLink != "" {
		lines = append(lines, "Join: "+b.JoinLink)
	}
	lines = append(lines,
		"",
		"Add to Google Calendar: "+b.GoogleCalendarURL,
		"Add to Outlook: "+b.OutlookCalendarURL,
		"",
		"Booking ID: "+b.ID,
	)
	return strings.Join(lines, "\n")
}
