package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novendor/novendor-site/server/internal/store"
	"github.com/novendor/novendor-site/server/internal/store/storetest"
)

func makeSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "bookings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.(store.Closer).Close() })
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeSQLiteStore)
}

func TestSQLiteStore_HealthPing(t *testing.T) {
	s := makeSQLiteStore(t)
	pinger, ok := s.(interface{ HealthPing(context.Context) error })
	require.True(t, ok)
	require.NoError(t, pinger.HealthPing(context.Background()))
}
