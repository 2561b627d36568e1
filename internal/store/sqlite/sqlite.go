// Package sqlite implements store.Store on an embedded SQLite database
// (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/novendor/novendor-site/server/internal/model"
	"github.com/novendor/novendor-site/server/internal/store"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS bookings (
    id                   TEXT PRIMARY KEY,
    uid                  TEXT NOT NULL,
    sequence             INTEGER NOT NULL DEFAULT 0,
    attendee_name        TEXT NOT NULL,
    attendee_email       TEXT NOT NULL,
    attendee_company     TEXT NOT NULL DEFAULT '',
    agenda               TEXT NOT NULL,
    timezone             TEXT NOT NULL,
    start_utc            TEXT NOT NULL,
    end_utc              TEXT NOT NULL,
    location             TEXT NOT NULL DEFAULT '',
    join_link            TEXT NOT NULL DEFAULT '',
    summary              TEXT NOT NULL DEFAULT '',
    ics_text             TEXT NOT NULL,
    ics_hash             TEXT NOT NULL,
    google_calendar_url  TEXT NOT NULL DEFAULT '',
    outlook_calendar_url TEXT NOT NULL DEFAULT '',
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);`

const selectColumns = `id, uid, sequence, attendee_name, attendee_email, attendee_company, agenda, timezone,
       start_utc, end_utc, location, join_link, summary, ics_text, ics_hash,
       google_calendar_url, outlook_calendar_url, created_at, updated_at`

// Open opens (or creates) a SQLite database at the given path and enables WAL journal mode.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer at a time keeps transactions from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the bookings table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}

// New opens path, applies the schema and returns the store.
func New(ctx context.Context, path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", model.ErrStorage, err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: sqlite schema: %v", model.ErrStorage, err)
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Bookings() store.Bookings { return &bookings{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqliteStore) Close() error { return s.db.Close() }

type bookings struct{ db *sql.DB }

type rowScanner interface {
	Scan(dest ...any) error
}

func (b *bookings) Create(ctx context.Context, rec *model.Booking) (*model.Booking, error) {
	_, err := b.db.ExecContext(ctx, `
        INSERT INTO bookings (`+selectColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.UID, rec.Sequence, rec.AttendeeName, rec.AttendeeEmail, rec.AttendeeCompany,
		rec.Agenda, rec.Timezone, formatTime(rec.StartUTC), formatTime(rec.EndUTC), rec.Location,
		rec.JoinLink, rec.Summary, rec.ICSText, rec.ICSHash, rec.GoogleCalendarURL,
		rec.OutlookCalendarURL, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("%w: insert booking %s: %v", model.ErrStorage, rec.ID, err)
	}
	out := *rec
	return &out, nil
}

func (b *bookings) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	row := b.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row, id)
}

func (b *bookings) Update(ctx context.Context, id string, fn store.UpdateFunc) (*model.Booking, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", model.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM bookings WHERE id = ?`, id), id)
	if err != nil {
		return nil, err
	}
	next, err := fn(*cur)
	if err != nil {
		return nil, err
	}
	next.ID = id

	_, err = tx.ExecContext(ctx, `
        UPDATE bookings SET
            uid = ?, sequence = ?, attendee_name = ?, attendee_email = ?, attendee_company = ?,
            agenda = ?, timezone = ?, start_utc = ?, end_utc = ?, location = ?, join_link = ?,
            summary = ?, ics_text = ?, ics_hash = ?, google_calendar_url = ?,
            outlook_calendar_url = ?, created_at = ?, updated_at = ?
        WHERE id = ?`,
		next.UID, next.Sequence, next.AttendeeName, next.AttendeeEmail, next.AttendeeCompany,
		next.Agenda, next.Timezone, formatTime(next.StartUTC), formatTime(next.EndUTC), next.Location,
		next.JoinLink, next.Summary, next.ICSText, next.ICSHash, next.GoogleCalendarURL,
		next.OutlookCalendarURL, formatTime(next.CreatedAt), formatTime(next.UpdatedAt), id)
	if err != nil {
		return nil, fmt.Errorf("%w: update booking %s: %v", model.ErrStorage, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", model.ErrStorage, err)
	}
	return &next, nil
}

func scanBooking(row rowScanner, id string) (*model.Booking, error) {
	var out model.Booking
	var start, end, created, updated string
	err := row.Scan(&out.ID, &out.UID, &out.Sequence, &out.AttendeeName, &out.AttendeeEmail,
		&out.AttendeeCompany, &out.Agenda, &out.Timezone, &start, &end, &out.Location,
		&out.JoinLink, &out.Summary, &out.ICSText, &out.ICSHash, &out.GoogleCalendarURL,
		&out.OutlookCalendarURL, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan booking %s: %v", model.ErrStorage, id, err)
	}
	for _, f := range []struct {
		dst *time.Time
		src string
	}{{&out.StartUTC, start}, {&out.EndUTC, end}, {&out.CreatedAt, created}, {&out.UpdatedAt, updated}} {
		t, err := time.Parse(time.RFC3339Nano, f.src)
		if err != nil {
			return nil, fmt.Errorf("%w: booking %s has bad timestamp %q", model.ErrStorage, id, f.src)
		}
		*f.dst = t
	}
	return &out, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
