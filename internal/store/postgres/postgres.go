package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

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
    start_utc            TIMESTAMPTZ NOT NULL,
    end_utc              TIMESTAMPTZ NOT NULL,
    location             TEXT NOT NULL DEFAULT '',
    join_link            TEXT NOT NULL DEFAULT '',
    summary              TEXT NOT NULL DEFAULT '',
    ics_text             TEXT NOT NULL,
    ics_hash             TEXT NOT NULL,
    google_calendar_url  TEXT NOT NULL DEFAULT '',
    outlook_calendar_url TEXT NOT NULL DEFAULT '',
    created_at           TIMESTAMPTZ NOT NULL,
    updated_at           TIMESTAMPTZ NOT NULL
);`

const selectColumns = `id, uid, sequence, attendee_name, attendee_email, attendee_company, agenda, timezone,
       start_utc, end_utc, location, join_link, summary, ics_text, ics_hash,
       google_calendar_url, outlook_calendar_url, created_at, updated_at`

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bootstrap creates the bookings table when it is missing.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}

// New opens dsn, bootstraps the schema and returns the store.
func New(ctx context.Context, dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", model.ErrStorage, err)
	}
	if err := Bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: postgres schema: %v", model.ErrStorage, err)
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an already-open database whose schema is in place.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Bookings() store.Bookings { return &bookings{db: s.db} }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *pgStore) Close() error { return s.db.Close() }

type bookings struct{ db *sql.DB }

func (b *bookings) Create(ctx context.Context, m *model.Booking) (*model.Booking, error) {
	_, err := b.db.ExecContext(ctx, `
        INSERT INTO bookings (`+selectColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
    `, m.ID, m.UID, m.Sequence, m.AttendeeName, m.AttendeeEmail, m.AttendeeCompany,
		m.Agenda, m.Timezone, m.StartUTC.UTC(), m.EndUTC.UTC(), m.Location, m.JoinLink,
		m.Summary, m.ICSText, m.ICSHash, m.GoogleCalendarURL, m.OutlookCalendarURL,
		m.CreatedAt.UTC(), m.UpdatedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: insert booking %s: %v", model.ErrStorage, m.ID, err)
	}
	out := *m
	return &out, nil
}

func (b *bookings) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	row := b.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row, id)
}

// Update locks the row with SELECT ... FOR UPDATE so concurrent resends serialize.
func (b *bookings) Update(ctx context.Context, id string, fn store.UpdateFunc) (*model.Booking, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", model.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	cur, err := scanBooking(row, id)
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
            uid = $2, sequence = $3, attendee_name = $4, attendee_email = $5, attendee_company = $6,
            agenda = $7, timezone = $8, start_utc = $9, end_utc = $10, location = $11,
            join_link = $12, summary = $13, ics_text = $14, ics_hash = $15,
            google_calendar_url = $16, outlook_calendar_url = $17, created_at = $18, updated_at = $19
        WHERE id = $1
    `, id, next.UID, next.Sequence, next.AttendeeName, next.AttendeeEmail, next.AttendeeCompany,
		next.Agenda, next.Timezone, next.StartUTC.UTC(), next.EndUTC.UTC(), next.Location,
		next.JoinLink, next.Summary, next.ICSText, next.ICSHash, next.GoogleCalendarURL,
		next.OutlookCalendarURL, next.CreatedAt.UTC(), next.UpdatedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: update booking %s: %v", model.ErrStorage, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", model.ErrStorage, err)
	}
	return &next, nil
}

func scanBooking(row interface{ Scan(...any) error }, id string) (*model.Booking, error) {
	var out model.Booking
	err := row.Scan(&out.ID, &out.UID, &out.Sequence, &out.AttendeeName, &out.AttendeeEmail,
		&out.AttendeeCompany, &out.Agenda, &out.Timezone, &out.StartUTC, &out.EndUTC,
		&out.Location, &out.JoinLink, &out.Summary, &out.ICSText, &out.ICSHash,
		&out.GoogleCalendarURL, &out.OutlookCalendarURL, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan booking %s: %v", model.ErrStorage, id, err)
	}
	out.StartUTC = out.StartUTC.UTC()
	out.EndUTC = out.EndUTC.UTC()
	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	return &out, nil
}
