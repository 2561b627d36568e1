package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/novendor/novendor-site/server/internal/calendar"
	"github.com/novendor/novendor-site/server/internal/model"
)

// Meeting length bounds in minutes.
const (
	MinDurationMinutes     = 15
	MaxDurationMinutes     = 180
	DefaultDurationMinutes = 30
)

// validateCreate trims every field and returns the normalized request with
// the parsed start instant. All failing fields are reported together.
func validateCreate(req CreateBookingRequest) (CreateBookingRequest, time.Time, error) {
	in := CreateBookingRequest{
		AttendeeName:    strings.TrimSpace(req.AttendeeName),
		AttendeeEmail:   strings.TrimSpace(req.AttendeeEmail),
		AttendeeCompany: strings.TrimSpace(req.AttendeeCompany),
		Agenda:          strings.TrimSpace(req.Agenda),
		StartUTC:        strings.TrimSpace(req.StartUTC),
		DurationMinutes: req.DurationMinutes,
		Timezone:        strings.TrimSpace(req.Timezone),
	}
	if in.Timezone == "" {
		in.Timezone = DefaultTimezone
	}

	ve := &model.ValidationError{}
	if in.AttendeeName == "" {
		ve.Add("attendeeName", "is required")
	}
	switch {
	case in.AttendeeEmail == "":
		ve.Add("attendeeEmail", "is required")
	case !strfmt.IsEmail(in.AttendeeEmail):
		ve.Add("attendeeEmail", "must be a valid email address")
	}
	if in.Agenda == "" {
		ve.Add("agenda", "is required")
	}

	var start time.Time
	if in.StartUTC == "" {
		ve.Add("startUtc", "is required")
	} else {
		t, err := calendar.ParseInstant("startUtc", in.StartUTC)
		switch {
		case err != nil:
			ve.Add("startUtc", "must be an ISO-8601 instant with an offset")
		case !storableWindow(t, t.Add(ClampDuration(in.DurationMinutes))):
			ve.Add("startUtc", "meeting must start and end between years 1 and 9999")
		}
		start = t
	}

	if ve.HasErrors() {
		return in, time.Time{}, ve
	}
	return in, start, nil
}

// storableWindow reports whether both instants fall in years 1-9999, the
// range RFC 3339 encoding and the stores accept.
func storableWindow(start, end time.Time) bool {
	for _, t := range []time.Time{start, end} {
		if y := t.UTC().Year(); y < 1 || y > 9999 {
			return false
		}
	}
	return true
}

// ClampDuration converts a client-supplied duration in minutes into a
// meeting length. Numbers and numeric strings are rounded to the nearest
// minute and clamped to [15, 180]; anything else yields 30 minutes.
func ClampDuration(v any) time.Duration {
	minutes, ok := numericMinutes(v)
	if !ok {
		return DefaultDurationMinutes * time.Minute
	}
	m := math.Round(minutes)
	m = math.Max(MinDurationMinutes, math.Min(MaxDurationMinutes, m))
	return time.Duration(m) * time.Minute
}

func numericMinutes(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
