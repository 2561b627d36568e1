package model

import "time"

// Booking is the durable record of a scheduled meeting.
//
// ID and UID never change after creation. Every calendar artifact field
// (ICSText, ICSHash and both deep links) is regenerated together whenever
// Sequence changes.
type Booking struct {
	ID string `json:"id"`

	AttendeeName    string `json:"attendeeName"`
	AttendeeEmail   string `json:"attendeeEmail"`
	AttendeeCompany string `json:"attendeeCompany,omitempty"`

	Agenda   string    `json:"agenda"`
	Timezone string    `json:"timezone"`
	StartUTC time.Time `json:"startUtc"`
	EndUTC   time.Time `json:"endUtc"`

	Location string `json:"location"`
	JoinLink string `json:"joinLink,omitempty"`
	Summary  string `json:"summary"`

	Sequence int    `json:"sequence"`
	UID      string `json:"uid"`

	ICSText            string `json:"icsText"`
	ICSHash            string `json:"icsHash"`
	GoogleCalendarURL  string `json:"googleCalendarUrl"`
	OutlookCalendarURL string `json:"outlookCalendarUrl"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Duration returns the scheduled length of the meeting.
func (b Booking) Duration() time.Duration { return b.EndUTC.Sub(b.StartUTC) }

// DeliveryMode reports how an email left the service.
type DeliveryMode string

const (
	DeliverySMTP    DeliveryMode = "smtp"
	DeliveryOutbox  DeliveryMode = "outbox"
	DeliveryFailed  DeliveryMode = "failed"
	DeliverySkipped DeliveryMode = "skipped"
)

// DeliveryReport carries the outcome of the attendee invite and the internal
// notification separately.
type DeliveryReport struct {
	Attendee DeliveryMode `json:"attendee"`
	Internal DeliveryMode `json:"internal"`
}
