package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novendor/novendor-site/server/internal/model"
	"github.com/novendor/novendor-site/server/internal/store"
)

// NewBooking returns a fully populated record with a unique id.
func NewBooking() *model.Booking {
	id := "bk_" + uuid.NewString()
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	created := time.Date(2025, 5, 20, 9, 30, 0, 0, time.UTC)
	return &model.Booking{
		ID:                 id,
		AttendeeName:       "Jane Doe",
		AttendeeEmail:      "jane@example.com",
		AttendeeCompany:    "Acme",
		Agenda:             "Intro call",
		Timezone:           "Europe/Berlin",
		StartUTC:           start,
		EndUTC:             start.Add(45 * time.Minute),
		Location:           "Video call",
		JoinLink:           "https://novendor.com/meet",
		Summary:            "NoVendor intro call",
		Sequence:           0,
		UID:                id + "@novendor.com",
		ICSText:            "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		ICSHash:            "abc123",
		GoogleCalendarURL:  "https://calendar.google.com/calendar/render?action=TEMPLATE",
		OutlookCalendarURL: "https://outlook.office.com/calendar/0/deeplink/compose",
		CreatedAt:          created,
		UpdatedAt:          created,
	}
}

// Run exercises a minimal compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("CreateThenGet", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()
		in := NewBooking()

		created, err := s.Bookings().Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, in.ID, created.ID)

		got, err := s.Bookings().GetByID(ctx, in.ID)
		require.NoError(t, err)
		assertSameBooking(t, in, got)
	})

	t.Run("GetUnknown", func(t *testing.T) {
		s := makeStore(t)
		_, err := s.Bookings().GetByID(context.Background(), "bk_doesnotexist")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("UpdateIncrementsAndKeepsID", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()
		in := NewBooking()
		_, err := s.Bookings().Create(ctx, in)
		require.NoError(t, err)

		later := in.UpdatedAt.Add(time.Hour)
		updated, err := s.Bookings().Update(ctx, in.ID, func(cur model.Booking) (model.Booking, error) {
			cur.ID = "bk_hijacked"
			cur.Sequence++
			cur.ICSText = "BEGIN:VCALENDAR\r\nSEQUENCE:1\r\nEND:VCALENDAR\r\n"
			cur.ICSHash = "def456"
			cur.UpdatedAt = later
			return cur, nil
		})
		require.NoError(t, err)
		assert.Equal(t, in.ID, updated.ID)
		assert.Equal(t, 1, updated.Sequence)

		got, err := s.Bookings().GetByID(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Sequence)
		assert.Equal(t, "def456", got.ICSHash)
		assert.Equal(t, in.UID, got.UID)
		assert.True(t, got.CreatedAt.Equal(in.CreatedAt))
		assert.True(t, got.UpdatedAt.Equal(later))

		_, err = s.Bookings().GetByID(ctx, "bk_hijacked")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("UpdateUnknown", func(t *testing.T) {
		s := makeStore(t)
		called := false
		_, err := s.Bookings().Update(context.Background(), "bk_doesnotexist", func(cur model.Booking) (model.Booking, error) {
			called = true
			return cur, nil
		})
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.False(t, called)
	})

	t.Run("UpdateFuncErrorWritesNothing", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()
		in := NewBooking()
		_, err := s.Bookings().Create(ctx, in)
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = s.Bookings().Update(ctx, in.ID, func(cur model.Booking) (model.Booking, error) {
			cur.Sequence = 99
			return cur, boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.Bookings().GetByID(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Sequence)
	})

	t.Run("ManyRecords", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()
		ids := make([]string, 0, 5)
		for i := 0; i < 5; i++ {
			b := NewBooking()
			_, err := s.Bookings().Create(ctx, b)
			require.NoError(t, err)
			ids = append(ids, b.ID)
		}
		for _, id := range ids {
			got, err := s.Bookings().GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
		}
	})
}

func assertSameBooking(t *testing.T, want, got *model.Booking) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.AttendeeName, got.AttendeeName)
	assert.Equal(t, want.AttendeeEmail, got.AttendeeEmail)
	assert.Equal(t, want.AttendeeCompany, got.AttendeeCompany)
	assert.Equal(t, want.Agenda, got.Agenda)
	assert.Equal(t, want.Timezone, got.Timezone)
	assert.True(t, want.StartUTC.Equal(got.StartUTC), "start %v != %v", want.StartUTC, got.StartUTC)
	assert.True(t, want.EndUTC.Equal(got.EndUTC), "end %v != %v", want.EndUTC, got.EndUTC)
	assert.Equal(t, want.Location, got.Location)
	assert.Equal(t, want.JoinLink, got.JoinLink)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.Sequence, got.Sequence)
	assert.Equal(t, want.UID, got.UID)
	assert.Equal(t, want.ICSText, got.ICSText)
	assert.Equal(t, want.ICSHash, got.ICSHash)
	assert.Equal(t, want.GoogleCalendarURL, got.GoogleCalendarURL)
	assert.Equal(t, want.OutlookCalendarURL, got.OutlookCalendarURL)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
}
