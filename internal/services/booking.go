package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/novendor/novendor-site/server/internal/calendar"
	"github.com/novendor/novendor-site/server/internal/config"
	"github.com/novendor/novendor-site/server/internal/mail"
	"github.com/novendor/novendor-site/server/internal/model"
	"github.com/novendor/novendor-site/server/internal/store"
)

// DefaultTimezone labels bookings created without a timezone.
const DefaultTimezone = "UTC"

// Mailer delivers the invite emails for a booking.
type Mailer interface {
	SendBookingEmails(ctx context.Context, b *model.Booking, kind mail.Kind) (model.DeliveryReport, error)
}

// CreateBookingRequest is the inbound booking form. DurationMinutes accepts
// whatever the client sent; see ClampDuration.
type CreateBookingRequest struct {
	AttendeeName    string `json:"attendeeName"`
	AttendeeEmail   string `json:"attendeeEmail"`
	AttendeeCompany string `json:"attendeeCompany"`
	Agenda          string `json:"agenda"`
	StartUTC        string `json:"startUtc"`
	DurationMinutes any    `json:"durationMinutes"`
	Timezone        string `json:"timezone"`
}

// CalendarLinks points the attendee at every way to add the event.
type CalendarLinks struct {
	ICSPath            string `json:"icsPath"`
	GoogleCalendarURL  string `json:"googleCalendarUrl"`
	OutlookCalendarURL string `json:"outlookCalendarUrl"`
}

// CreateBookingResult is the create response plus the persisted booking.
type CreateBookingResult struct {
	BookingID            string             `json:"bookingId"`
	StartUTC             string             `json:"startUtc"`
	EndUTC               string             `json:"endUtc"`
	Timezone             string             `json:"timezone"`
	Sequence             int                `json:"sequence"`
	DeliveryMode         model.DeliveryMode `json:"deliveryMode"`
	InternalDeliveryMode model.DeliveryMode `json:"internalDeliveryMode"`
	Calendar             CalendarLinks      `json:"calendar"`

	Booking *model.Booking `json:"-"`
}

// ResendResult is the resend response plus the updated booking.
type ResendResult struct {
	BookingID            string             `json:"bookingId"`
	Sequence             int                `json:"sequence"`
	DeliveryMode         model.DeliveryMode `json:"deliveryMode"`
	InternalDeliveryMode model.DeliveryMode `json:"internalDeliveryMode"`

	Booking *model.Booking `json:"-"`
}

// ICSDocument is a stored invite ready for download.
type ICSDocument struct {
	Filename string
	Content  string
}

// BookingService runs the booking lifecycle: create, resend and ICS download.
type BookingService struct {
	store  store.Store
	mailer Mailer
	cfg    config.Booking
	now    func() time.Time
	newID  func() string
	log    zerolog.Logger
}

// Option configures a BookingService.
type Option func(*BookingService)

// WithClock overrides the time source used for DTSTAMP and audit timestamps.
func WithClock(now func() time.Time) Option { return func(s *BookingService) { s.now = now } }

// WithIDGenerator overrides booking id generation.
func WithIDGenerator(gen func() string) Option { return func(s *BookingService) { s.newID = gen } }

// WithLogger sets the logger for delivery outcomes.
func WithLogger(log zerolog.Logger) Option { return func(s *BookingService) { s.log = log } }

// NewBookingService returns a service with the real clock and UUIDv7 ids.
func NewBookingService(st store.Store, mailer Mailer, cfg config.Booking, opts ...Option) *BookingService {
	s := &BookingService{
		store:  st,
		mailer: mailer,
		cfg:    cfg,
		now:    time.Now,
		newID:  NewBookingID,
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewBookingID returns "bk_" followed by a UUIDv7 in hex: a millisecond
// timestamp prefix and a random suffix.
func NewBookingID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "bk_" + strings.ReplaceAll(id.String(), "-", "")
}

// ICSPath is the download route for a booking's invite.
func ICSPath(id string) string { return "/api/bookings/" + id + "/ics" }

// Create validates the request, persists a sequence-0 booking and sends the invite.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error) {
	in, start, err := validateCreate(req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id := s.newID()
	b := &model.Booking{
		ID:              id,
		AttendeeName:    in.AttendeeName,
		AttendeeEmail:   in.AttendeeEmail,
		AttendeeCompany: in.AttendeeCompany,
		Agenda:          in.Agenda,
		Timezone:        in.Timezone,
		StartUTC:        start,
		EndUTC:          start.Add(ClampDuration(req.DurationMinutes)),
		Location:        s.cfg.Location,
		JoinLink:        s.cfg.JoinLink,
		Summary:         s.cfg.Summary,
		Sequence:        0,
		UID:             calendar.UID(id, s.cfg.UIDDomain),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.render(b, s.cfg.UIDDomain, now); err != nil {
		return nil, err
	}

	saved, err := s.store.Bookings().Create(ctx, b)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "save booking")
	}

	report, err := s.mailer.SendBookingEmails(ctx, saved, mail.KindCreated)
	if err != nil {
		return nil, deliveryError(saved.ID, err)
	}
	s.log.Info().
		Str("booking_id", saved.ID).
		Int("sequence", saved.Sequence).
		Str("delivery_mode", string(report.Attendee)).
		Str("internal_delivery_mode", string(report.Internal)).
		Msg("booking created")

	return &CreateBookingResult{
		BookingID:            saved.ID,
		StartUTC:             saved.StartUTC.UTC().Format(time.RFC3339),
		EndUTC:               saved.EndUTC.UTC().Format(time.RFC3339),
		Timezone:             saved.Timezone,
		Sequence:             saved.Sequence,
		DeliveryMode:         report.Attendee,
		InternalDeliveryMode: report.Internal,
		Calendar: CalendarLinks{
			ICSPath:            ICSPath(saved.ID),
			GoogleCalendarURL:  saved.GoogleCalendarURL,
			OutlookCalendarURL: saved.OutlookCalendarURL,
		},
		Booking: saved,
	}, nil
}

// Resend bumps the sequence by one, regenerates every calendar artifact and
// re-sends the invite. Callers must authorize the request first.
func (s *BookingService) Resend(ctx context.Context, id string) (*ResendResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.ErrNotFound
	}

	now := s.now().UTC()
	updated, err := s.store.Bookings().Update(ctx, id, func(cur model.Booking) (model.Booking, error) {
		next := cur
		next.Sequence = cur.Sequence + 1
		next.UpdatedAt = now
		domain := calendar.UIDDomain(cur.UID)
		if domain == "" {
			domain = s.cfg.UIDDomain
		}
		if err := s.render(&next, domain, now); err != nil {
			return cur, err
		}
		return next, nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, pkgerrors.Wrapf(err, "update booking %s", id)
	}

	report, err := s.mailer.SendBookingEmails(ctx, updated, mail.KindUpdated)
	if err != nil {
		return nil, deliveryError(updated.ID, err)
	}
	s.log.Info().
		Str("booking_id", updated.ID).
		Int("sequence", updated.Sequence).
		Str("delivery_mode", string(report.Attendee)).
		Str("internal_delivery_mode", string(report.Internal)).
		Msg("booking resent")

	return &ResendResult{
		BookingID:            updated.ID,
		Sequence:             updated.Sequence,
		DeliveryMode:         report.Attendee,
		InternalDeliveryMode: report.Internal,
		Booking:              updated,
	}, nil
}

// ICS returns the stored invite text exactly as last generated.
func (s *BookingService) ICS(ctx context.Context, id string) (*ICSDocument, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.ErrNotFound
	}
	b, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, pkgerrors.Wrapf(err, "load booking %s", id)
	}
	return &ICSDocument{Filename: calendar.Filename(b.ID), Content: b.ICSText}, nil
}

// render regenerates ICSText, ICSHash and both deep links from b's current fields.
func (s *BookingService) render(b *model.Booking, uidDomain string, stamp time.Time) error {
	ev := calendar.Event{
		ID:              b.ID,
		Summary:         b.Summary,
		Agenda:          b.Agenda,
		Location:        b.Location,
		JoinLink:        b.JoinLink,
		AttendeeName:    b.AttendeeName,
		AttendeeEmail:   b.AttendeeEmail,
		AttendeeCompany: b.AttendeeCompany,
		Sequence:        b.Sequence,
		Start:           b.StartUTC,
		End:             b.EndUTC,
	}
	text, err := calendar.BuildICS(ev, calendar.Options{
		UIDDomain:      uidDomain,
		OrganizerName:  s.cfg.OrganizerName,
		OrganizerEmail: s.cfg.OrganizerEmail,
		DTStamp:        stamp,
	})
	if err != nil {
		var dateErr *calendar.InvalidDateError
		if errors.As(err, &dateErr) {
			ve := &model.ValidationError{}
			ve.Add(dateErr.Field, dateErr.Error())
			return ve
		}
		return err
	}
	b.UID = calendar.UID(b.ID, uidDomain)
	b.ICSText = text
	b.ICSHash = calendar.HashICS(text)
	b.GoogleCalendarURL = calendar.GoogleCalendarURL(ev)
	b.OutlookCalendarURL = calendar.OutlookCalendarURL(ev)
	return nil
}

// deliveryError tags err with ErrDelivery and the booking id and records a stack.
func deliveryError(id string, err error) error {
	if errors.Is(err, model.ErrDelivery) {
		return pkgerrors.Wrapf(err, "booking %s", id)
	}
	return pkgerrors.WithStack(fmt.Errorf("%w: booking %s: %v", model.ErrDelivery, id, err))
}
