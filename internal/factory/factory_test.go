package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novendor/novendor-site/server/internal/config"
	"github.com/novendor/novendor-site/server/internal/mail"
	"github.com/novendor/novendor-site/server/internal/store"
	"github.com/novendor/novendor-site/server/internal/store/storetest"
)

func TestNewMailTransport(t *testing.T) {
	cases := []struct {
		name   string
		cfg    config.Mail
		outbox bool
	}{
		{"nothing configured", config.Mail{}, true},
		{"host without from", config.Mail{Host: "smtp.example.com"}, true},
		{"from without host", config.Mail{From: "hello@novendor.com"}, true},
		{"host and from", config.Mail{Host: "smtp.example.com", Port: 587, From: "hello@novendor.com"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewMailTransport(tc.cfg, t.TempDir(), zerolog.Nop())
			_, isOutbox := tr.(*mail.OutboxTransport)
			_, isSMTP := tr.(*mail.SMTPTransport)
			assert.Equal(t, tc.outbox, isOutbox)
			assert.Equal(t, !tc.outbox, isSMTP)
		})
	}
}

func TestNewStore_Drivers(t *testing.T) {
	for _, driver := range []string{config.DriverFile, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			dir := t.TempDir()
			cfg := &config.Config{StoreDriver: driver, DataDir: dir, SQLitePath: filepath.Join(dir, "bookings.db")}
			s, err := NewStore(context.Background(), cfg, zerolog.Nop())
			require.NoError(t, err)
			if c, ok := s.(store.Closer); ok {
				t.Cleanup(func() { _ = c.Close() })
			}

			in := storetest.NewBooking()
			_, err = s.Bookings().Create(context.Background(), in)
			require.NoError(t, err)
			got, err := s.Bookings().GetByID(context.Background(), in.ID)
			require.NoError(t, err)
			assert.Equal(t, in.UID, got.UID)
		})
	}
}

func TestNewStore_UnknownDriver(t *testing.T) {
	_, err := NewStore(context.Background(), &config.Config{StoreDriver: "mongo"}, zerolog.Nop())
	require.Error(t, err)
}
