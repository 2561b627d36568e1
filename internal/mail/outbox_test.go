package mail

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novendor/novendor-site/server/internal/model"
)

func sampleMessage() Message {
	return Message{
		From:    "NoVendor <hello@novendor.com>",
		To:      []string{"jane@example.com"},
		Subject: "Confirmed: NoVendor intro call",
		Text:    "Hi Jane",
		Attachments: []Attachment{{
			Filename:    "novendor-bk_1.ics",
			ContentType: icsContentType,
			Content:     "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		}},
	}
}

var outboxName = regexp.MustCompile(`^\d{8}T\d{6}\.\d{9}Z-[0-9a-f]{12}\.json$`)

func TestOutboxTransport_WritesJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")
	tr := NewOutboxTransport(dir)
	tr.now = func() time.Time { return time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC) }

	mode, err := tr.Send(context.Background(), sampleMessage())
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryOutbox, mode)

	files, err := ListOutbox(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Regexp(t, outboxName, filepath.Base(files[0]))
	assert.True(t, strings.HasPrefix(filepath.Base(files[0]), "20250601T150000.000000000Z-"))

	rec, err := ReadOutboxFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.com"}, rec.To)
	assert.Equal(t, "Confirmed: NoVendor intro call", rec.Subject)
	require.Len(t, rec.Attachments, 1)
	assert.Equal(t, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", rec.Attachments[0].Content)
	assert.True(t, rec.QueuedAt.Equal(tr.now()))

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOutboxTransport_UniqueNamesAndOrder(t *testing.T) {
	dir := t.TempDir()
	tr := NewOutboxTransport(dir)
	base := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(4-i) * time.Second)
		tr.now = func() time.Time { return at }
		msg := sampleMessage()
		msg.Subject = at.Format(time.RFC3339)
		_, err := tr.Send(context.Background(), msg)
		require.NoError(t, err)
	}
	// same instant twice still yields two files
	tr.now = func() time.Time { return base }
	_, err := tr.Send(context.Background(), sampleMessage())
	require.NoError(t, err)

	files, err := ListOutbox(dir)
	require.NoError(t, err)
	require.Len(t, files, 6)

	var prev time.Time
	for _, f := range files {
		rec, err := ReadOutboxFile(f)
		require.NoError(t, err)
		assert.False(t, rec.QueuedAt.Before(prev), "files must list oldest first")
		prev = rec.QueuedAt
	}
}

func TestListOutbox_IgnoresNonMessages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sent"), 0o755))

	files, err := ListOutbox(dir)
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = ListOutbox(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestOutboxTransport_HealthPing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")
	tr := NewOutboxTransport(dir)
	require.NoError(t, tr.HealthPing(context.Background()))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOutboxTransport_UnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0o500))
	t.Cleanup(func() { _ = os.Chmod(parent, 0o755) })

	tr := NewOutboxTransport(filepath.Join(parent, "outbox"))
	mode, err := tr.Send(context.Background(), sampleMessage())
	require.ErrorIs(t, err, model.ErrDelivery)
	assert.Equal(t, model.DeliveryFailed, mode)
}
