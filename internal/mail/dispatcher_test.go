package mail

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novendor/novendor-site/server/internal/config"
	"github.com/novendor/novendor-site/server/internal/model"
)

type recordingTransport struct {
	sent []Message
	// failTo makes Send fail for messages addressed to this recipient.
	failTo string
	mode   model.DeliveryMode
}

func (r *recordingTransport) Send(_ context.Context, msg Message) (model.DeliveryMode, error) {
	if r.failTo != "" && msg.To[0] == r.failTo {
		return model.DeliveryFailed, errors.New("relay rejected")
	}
	r.sent = append(r.sent, msg)
	if r.mode == "" {
		return model.DeliverySMTP, nil
	}
	return r.mode, nil
}

func bookingConfig(internal string) config.Booking {
	return config.Booking{
		UIDDomain:      "novendor.com",
		OrganizerName:  "NoVendor",
		OrganizerEmail: "hello@novendor.com",
		Summary:        "NoVendor intro call",
		Location:       "Video call",
		InternalEmail:  internal,
	}
}

func sampleBooking() *model.Booking {
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	return &model.Booking{
		ID:                 "bk_1",
		AttendeeName:       "Jane Doe",
		AttendeeEmail:      "jane@example.com",
		AttendeeCompany:    "Acme",
		Agenda:             "Intro call",
		Timezone:           "Europe/Berlin",
		StartUTC:           start,
		EndUTC:             start.Add(45 * time.Minute),
		Location:           "Video call",
		Summary:            "NoVendor intro call",
		Sequence:           2,
		UID:                "bk_1@novendor.com",
		ICSText:            "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		GoogleCalendarURL:  "https://calendar.google.com/x",
		OutlookCalendarURL: "https://outlook.office.com/x",
	}
}

func TestDispatcher_AttendeeOnlyWhenNoInternalRecipient(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(tr, bookingConfig(""), zerolog.Nop())

	report, err := d.SendBookingEmails(context.Background(), sampleBooking(), KindCreated)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryReport{Attendee: model.DeliverySMTP, Internal: model.DeliverySkipped}, report)

	require.Len(t, tr.sent, 1)
	msg := tr.sent[0]
	assert.Equal(t, []string{"jane@example.com"}, msg.To)
	assert.Equal(t, `"NoVendor" <hello@novendor.com>`, msg.From)
	assert.True(t, strings.HasPrefix(msg.Subject, "Confirmed: NoVendor intro call"))
	assert.Contains(t, msg.Text, "Booking ID: bk_1")
	assert.Contains(t, msg.Text, "https://calendar.google.com/x")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "novendor-bk_1.ics", msg.Attachments[0].Filename)
	assert.Equal(t, sampleBooking().ICSText, msg.Attachments[0].Content)
}

func TestDispatcher_InternalNotification(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(tr, bookingConfig("team@novendor.com"), zerolog.Nop())

	report, err := d.SendBookingEmails(context.Background(), sampleBooking(), KindUpdated)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryReport{Attendee: model.DeliverySMTP, Internal: model.DeliverySMTP}, report)

	require.Len(t, tr.sent, 2)
	assert.True(t, strings.HasPrefix(tr.sent[0].Subject, "Updated: "))
	assert.Equal(t, []string{"team@novendor.com"}, tr.sent[1].To)
	assert.Equal(t, "Booking re-sent: Jane Doe (Acme) (sequence 2)", tr.sent[1].Subject)
	assert.Equal(t, tr.sent[0].Attachments, tr.sent[1].Attachments)
}

func TestDispatcher_InternalFailureIsReportedNotReturned(t *testing.T) {
	tr := &recordingTransport{failTo: "team@novendor.com"}
	d := NewDispatcher(tr, bookingConfig("team@novendor.com"), zerolog.Nop())

	report, err := d.SendBookingEmails(context.Background(), sampleBooking(), KindCreated)
	require.NoError(t, err)
	assert.Equal(t, model.DeliverySMTP, report.Attendee)
	assert.Equal(t, model.DeliveryFailed, report.Internal)
}

func TestDispatcher_AttendeeFailureIsReturned(t *testing.T) {
	tr := &recordingTransport{failTo: "jane@example.com"}
	d := NewDispatcher(tr, bookingConfig("team@novendor.com"), zerolog.Nop())

	report, err := d.SendBookingEmails(context.Background(), sampleBooking(), KindCreated)
	require.Error(t, err)
	assert.Equal(t, model.DeliveryFailed, report.Attendee)
	assert.Empty(t, tr.sent, "internal notification is not attempted after the attendee send fails")
}

func TestDispatcher_OutboxFallback(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")
	d := NewDispatcher(NewOutboxTransport(dir), bookingConfig("team@novendor.com"), zerolog.Nop())

	report, err := d.SendBookingEmails(context.Background(), sampleBooking(), KindCreated)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryReport{Attendee: model.DeliveryOutbox, Internal: model.DeliveryOutbox}, report)

	files, err := ListOutbox(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
