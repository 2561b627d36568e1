package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novendor/novendor-site/server/internal/model"
)

func TestClampDuration(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want time.Duration
	}{
		{"absent", nil, 30 * time.Minute},
		{"in range", float64(45), 45 * time.Minute},
		{"rounds down", 44.4, 44 * time.Minute},
		{"rounds up", 44.5, 45 * time.Minute},
		{"zero clamps to min", float64(0), 15 * time.Minute},
		{"negative clamps to min", float64(-10), 15 * time.Minute},
		{"too long clamps to max", float64(600), 180 * time.Minute},
		{"numeric string", "60", 60 * time.Minute},
		{"padded numeric string", " 90 ", 90 * time.Minute},
		{"empty string", "", 30 * time.Minute},
		{"non-numeric string", "abc", 30 * time.Minute},
		{"NaN", math.NaN(), 30 * time.Minute},
		{"infinity", math.Inf(1), 30 * time.Minute},
		{"bool", true, 30 * time.Minute},
		{"int", 20, 20 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClampDuration(tc.in))
		})
	}
}

func TestClampDuration_AlwaysWithinBounds(t *testing.T) {
	for _, v := range []float64{-1e9, -1, 0, 14.49, 15, 179.5, 180.4, 1e9} {
		d := ClampDuration(v)
		assert.GreaterOrEqual(t, d, 15*time.Minute)
		assert.LessOrEqual(t, d, 180*time.Minute)
	}
}

func TestValidateCreate_RejectsWindowOutsideStorableYears(t *testing.T) {
	base := CreateBookingRequest{
		AttendeeName:  "Jane Doe",
		AttendeeEmail: "jane@example.com",
		Agenda:        "Intro call",
	}
	cases := []struct {
		name     string
		start    string
		duration any
		ok       bool
	}{
		{"end after year 9999", "9999-12-31T23:59:00Z", float64(180), false},
		{"default duration crosses year 9999", "9999-12-31T23:45:00Z", nil, false},
		{"shifts into year 0", "0001-01-01T00:30:00+01:00", nil, false},
		{"fits before year 10000", "9999-12-31T20:00:00Z", float64(180), true},
		{"ordinary", "2025-06-01T15:00:00Z", float64(45), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			req.StartUTC = tc.start
			req.DurationMinutes = tc.duration
			_, _, err := validateCreate(req)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, "startUtc")
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}
