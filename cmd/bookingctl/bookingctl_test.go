package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novendor/novendor-site/server/internal/calendar"
	"github.com/novendor/novendor-site/server/internal/mail"
)

func TestRunCreate_PostsBooking(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/bookings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"bookingId":"bk_1","sequence":0}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := runCreate(newClient(srv.URL, ""), createFlags{
		name:     "Jane Doe",
		email:    "jane@example.com",
		agenda:   "Intro call",
		start:    "2025-06-01T15:00:00Z",
		duration: 45,
		company:  "Acme",
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", got["attendeeName"])
	assert.Equal(t, "Acme", got["attendeeCompany"])
	assert.EqualValues(t, 45, got["durationMinutes"])
	_, hasTZ := got["timezone"]
	assert.False(t, hasTZ)
	assert.Contains(t, out.String(), `"bookingId": "bk_1"`)
}

func TestRunCreate_SurfacesValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Bad Request","message":"validation failed","fields":{"attendeeEmail":"must be a valid email address"}}`))
	}))
	defer srv.Close()

	err := runCreate(newClient(srv.URL, ""), createFlags{name: "x"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "attendeeEmail")
}

func TestRunResend_SendsAdminToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bookings/bk_1/resend", r.URL.Path)
		if r.Header.Get("X-Admin-Token") != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"invalid admin token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"bookingId":"bk_1","sequence":1}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	require.NoError(t, runResend(newClient(srv.URL, "s3cret"), "bk_1", &out))
	assert.Contains(t, out.String(), `"sequence": 1`)

	err := runResend(newClient(srv.URL, "wrong"), "bk_1", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid admin token")
}

func TestRunDownloadICS_WritesFile(t *testing.T) {
	body := "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bookings/bk_1/ics", r.URL.Path)
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "invite.ics")
	var out bytes.Buffer
	require.NoError(t, runDownloadICS(newClient(srv.URL, ""), "bk_1", path, &out))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
	assert.Contains(t, out.String(), "wrote "+path)

	out.Reset()
	require.NoError(t, runDownloadICS(newClient(srv.URL, ""), "bk_1", "", &out))
	assert.Equal(t, body, out.String())
}

func TestRunInspect(t *testing.T) {
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	text, err := calendar.BuildICS(calendar.Event{
		ID:            "bk_1",
		Summary:       "NoVendor intro call",
		Agenda:        "Intro call",
		AttendeeName:  "Jane Doe",
		AttendeeEmail: "jane@example.com",
		Sequence:      2,
		Start:         start,
		End:           start.Add(30 * time.Minute),
	}, calendar.Options{UIDDomain: "novendor.com", OrganizerName: "NoVendor", OrganizerEmail: "hello@novendor.com"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runInspect(strings.NewReader(text), &out))
	s := out.String()
	assert.Contains(t, s, "bk_1@novendor.com")
	assert.Regexp(t, `SEQUENCE\s+2`, s)
	assert.Contains(t, s, "2025-06-01T15:00:00Z")
	assert.Contains(t, s, "2025-06-01T15:30:00Z")
	assert.Regexp(t, `ATTENDEE\s+jane@example.com`, s)
	assert.Regexp(t, `ORGANIZER\s+hello@novendor.com`, s)
}

func TestRunInspect_RejectsEmptyCalendar(t *testing.T) {
	err := runInspect(strings.NewReader("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"), &bytes.Buffer{})
	require.Error(t, err)
}

func TestRunOutboxList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")

	var out bytes.Buffer
	require.NoError(t, runOutboxList(dir, &out))
	assert.Contains(t, out.String(), "is empty")

	tr := mail.NewOutboxTransport(dir)
	_, err := tr.Send(context.Background(), mail.Message{
		From:    "NoVendor <hello@novendor.com>",
		To:      []string{"jane@example.com"},
		Subject: "Confirmed: intro",
		Text:    "hi",
	})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, runOutboxList(dir, &out))
	assert.Contains(t, out.String(), "jane@example.com")
	assert.Contains(t, out.String(), "Confirmed: intro")
}
