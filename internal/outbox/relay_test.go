package outbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novendor/novendor-site/server/internal/mail"
	"github.com/novendor/novendor-site/server/internal/model"
)

type fakeTransport struct {
	sent []mail.Message
	fail map[string]bool // by subject
}

func (f *fakeTransport) Send(_ context.Context, msg mail.Message) (model.DeliveryMode, error) {
	if f.fail[msg.Subject] {
		return model.DeliveryFailed, errors.New("relay down")
	}
	f.sent = append(f.sent, msg)
	return model.DeliverySMTP, nil
}

func queue(t *testing.T, dir string, subjects ...string) {
	t.Helper()
	ob := mail.NewOutboxTransport(dir)
	for _, s := range subjects {
		_, err := ob.Send(context.Background(), mail.Message{To: []string{"jane@example.com"}, Subject: s, Text: "hi"})
		require.NoError(t, err)
		// distinct timestamps keep queue order deterministic
		time.Sleep(time.Millisecond)
	}
}

func TestRelay_ProcessOnce_SendsAndMovesToSent(t *testing.T) {
	dir := t.TempDir()
	queue(t, dir, "first", "second", "third")

	ft := &fakeTransport{}
	r := NewRelay(ft, Config{Dir: dir}, zerolog.Nop())
	res, err := r.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 3}, res)

	require.Len(t, ft.sent, 3)
	assert.Equal(t, "first", ft.sent[0].Subject)
	assert.Equal(t, "third", ft.sent[2].Subject)

	left, err := mail.ListOutbox(dir)
	require.NoError(t, err)
	assert.Empty(t, left)
	sent, err := mail.ListOutbox(filepath.Join(dir, SentDir))
	require.NoError(t, err)
	assert.Len(t, sent, 3)
}

func TestRelay_ProcessOnce_FailuresStayQueued(t *testing.T) {
	dir := t.TempDir()
	queue(t, dir, "ok", "bounce")

	ft := &fakeTransport{fail: map[string]bool{"bounce": true}}
	r := NewRelay(ft, Config{Dir: dir}, zerolog.Nop())
	res, err := r.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 1, Failed: 1}, res)

	left, err := mail.ListOutbox(dir)
	require.NoError(t, err)
	require.Len(t, left, 1)
	rec, err := mail.ReadOutboxFile(left[0])
	require.NoError(t, err)
	assert.Equal(t, "bounce", rec.Subject)

	// relay recovers on the next cycle
	ft.fail = nil
	res, err = r.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 1}, res)
}

func TestRelay_ProcessOnce_BatchLimit(t *testing.T) {
	dir := t.TempDir()
	queue(t, dir, "a", "b", "c")

	ft := &fakeTransport{}
	r := NewRelay(ft, Config{Dir: dir, BatchSize: 2}, zerolog.Nop())
	res, err := r.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, []string{"a", "b"}, []string{ft.sent[0].Subject, ft.sent[1].Subject})
}

func TestRelay_ProcessOnce_PoisonFileIsParked(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "00000000T000000.000000000Z-bad.json"), []byte("{not json"), 0o644))
	queue(t, dir, "good")

	ft := &fakeTransport{}
	r := NewRelay(ft, Config{Dir: dir}, zerolog.Nop())
	res, err := r.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 1, Poisoned: 1}, res)

	parked, err := mail.ListOutbox(filepath.Join(dir, FailedDir))
	require.NoError(t, err)
	assert.Len(t, parked, 1)
}

func TestRelay_Run_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	queue(t, dir, "x")

	ft := &fakeTransport{}
	r := NewRelay(ft, Config{Dir: dir, Interval: 10 * time.Millisecond}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		left, _ := mail.ListOutbox(dir)
		return len(left) == 0
	}, time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
