package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome = "BOOKING_LOCALSTATE_HOME" // override for tests
	dirName = ".novendor-booking"       // default under $HOME

	BookingsFilename = "bookings.json"
	SQLiteFilename   = "bookings.db"
	OutboxDirName    = "outbox"
)

// DataDir returns the directory where local state is stored (~/.novendor-booking).
// It creates the directory with 0700 permissions if it does not exist.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// BookingsPath returns the JSON collection file inside dir.
func BookingsPath(dir string) string {
	return filepath.Join(dir, BookingsFilename)
}
